// Package event defines the typed event records dispatched through the bus.
//
// Events carry a category tag, an ordered priority, and an opaque payload
// mapping. The category is the union tag: health and lifecycle events are
// system-category events whose payload carries exactly the documented
// component/state/reason/timestamp fields. Encode and Decode are the single
// serialization pair for every category.
package event
