package event

import (
	"fmt"
	"time"
)

// Map field names used by Encode and Decode.
const (
	fieldID        = "id"
	fieldCategory  = "category"
	fieldPriority  = "priority"
	fieldPayload   = "payload"
	fieldTimestamp = "timestamp"
)

// Encode flattens the event into a plain mapping suitable for persistence or
// cross-boundary transport. This is the single serialization point: there are
// no per-category overrides, the category tag selects the payload variant.
func (e Event) Encode() map[string]any {
	m := map[string]any{
		fieldID:        e.ID,
		fieldCategory:  string(e.Category),
		fieldPriority:  e.Priority.String(),
		fieldTimestamp: e.Timestamp.Format(time.RFC3339Nano),
	}
	if len(e.Payload) > 0 {
		m[fieldPayload] = copyPayload(e.Payload)
	}
	return m
}

// Decode reconstructs an event from a mapping produced by Encode.
func Decode(m map[string]any) (Event, error) {
	var e Event

	id, ok := m[fieldID].(string)
	if !ok || id == "" {
		return e, fmt.Errorf("event: decode: missing id")
	}

	rawCat, ok := m[fieldCategory].(string)
	if !ok {
		return e, fmt.Errorf("event: decode: missing category")
	}
	cat := Category(rawCat)
	if !cat.Valid() {
		return e, fmt.Errorf("event: decode: unknown category %q", rawCat)
	}

	rawPrio, ok := m[fieldPriority].(string)
	if !ok {
		return e, fmt.Errorf("event: decode: missing priority")
	}
	prio, err := ParsePriority(rawPrio)
	if err != nil {
		return e, fmt.Errorf("event: decode: %w", err)
	}

	rawTS, ok := m[fieldTimestamp].(string)
	if !ok {
		return e, fmt.Errorf("event: decode: missing timestamp")
	}
	ts, err := time.Parse(time.RFC3339Nano, rawTS)
	if err != nil {
		return e, fmt.Errorf("event: decode: bad timestamp: %w", err)
	}

	var payload map[string]any
	if raw, exists := m[fieldPayload]; exists {
		payload, ok = raw.(map[string]any)
		if !ok {
			return e, fmt.Errorf("event: decode: payload is not a mapping")
		}
	}

	return Event{
		ID:        id,
		Category:  cat,
		Priority:  prio,
		Payload:   copyPayload(payload),
		Timestamp: ts,
	}, nil
}
