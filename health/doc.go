// Package health defines the health metric model and the manager that
// aggregates per-component status.
//
// Components either implement Provider for pull-based collection or push
// status and metrics directly. The manager stores the most recent full
// metrics list as reported, appends every observation to a per-component
// history, and marks a snapshot stale instead of discarding it when its
// provider fails.
package health
