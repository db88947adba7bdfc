package event

// Payload keys for health and recovery events. These four keys (plus
// recovery_action on recovery events) are the complete protocol surface; no
// other keys may appear in a dispatched health event.
const (
	KeyComponent      = "component"
	KeyState          = "state"
	KeyReason         = "reason"
	KeyTimestamp      = "timestamp"
	KeyRecoveryAction = "recovery_action"
)

// HealthPayload is the documented payload of a health or lifecycle event.
type HealthPayload struct {
	Component string
	State     string
	Reason    string
}

// NewHealth builds a system-category event carrying exactly the documented
// health payload fields. The event timestamp doubles as the payload timestamp.
func NewHealth(priority Priority, p HealthPayload) Event {
	e := New(CategorySystem, priority, map[string]any{
		KeyComponent: p.Component,
		KeyState:     p.State,
		KeyReason:    p.Reason,
	})
	e.Payload[KeyTimestamp] = e.Timestamp
	return e
}

// NewRecovery builds a recovery event: a health payload plus the
// recovery_action audit field.
func NewRecovery(p HealthPayload, action string) Event {
	e := NewHealth(PriorityHigh, p)
	e.Payload[KeyRecoveryAction] = action
	return e
}
