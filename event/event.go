package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category classifies an event by its origin subsystem.
type Category string

const (
	CategorySystem  Category = "system"
	CategoryContent Category = "content"
	CategoryUser    Category = "user"
	CategoryAI      Category = "ai"
	CategoryUI      Category = "ui"
)

// Categories lists all valid categories in declaration order.
func Categories() []Category {
	return []Category{CategorySystem, CategoryContent, CategoryUser, CategoryAI, CategoryUI}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySystem, CategoryContent, CategoryUser, CategoryAI, CategoryUI:
		return true
	default:
		return false
	}
}

// Priority orders events, highest first.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParsePriority converts a priority name back to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "critical":
		return PriorityCritical, nil
	case "high":
		return PriorityHigh, nil
	case "normal":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityNormal, fmt.Errorf("event: unknown priority %q", s)
	}
}

// HigherThan reports whether p outranks q.
func (p Priority) HigherThan(q Priority) bool { return p < q }

// Reason values used in system event payloads. The dispatcher and dashboard
// key off these to tell lifecycle events apart from health observations.
const (
	ReasonRegistered   = "component-registered"
	ReasonUnregistered = "component-unregistered"
	ReasonStateChanged = "state-changed"
	ReasonHealthUpdate = "health-update"
	ReasonDiagnosis    = "self-diagnosis"
	ReasonRecovery     = "recovery"
)

// Event is an immutable record dispatched through the bus. Treat the payload
// as read-only once the event has been published; New and Decode copy it.
type Event struct {
	ID        string         `json:"id"`
	Category  Category       `json:"category"`
	Priority  Priority       `json:"priority"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// New creates an event with a fresh ID and timestamp. The payload map is
// copied so later caller mutations cannot leak into the published record.
func New(category Category, priority Priority, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Category:  category,
		Priority:  priority,
		Payload:   copyPayload(payload),
		Timestamp: time.Now().UTC(),
	}
}

// Get returns a payload value by key.
func (e Event) Get(key string) (any, bool) {
	v, ok := e.Payload[key]
	return v, ok
}

// GetString returns a payload value as a string, or "" if absent.
func (e Event) GetString(key string) string {
	if v, ok := e.Payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	cp := make(map[string]any, len(payload))
	for k, v := range payload {
		cp[k] = v
	}
	return cp
}
