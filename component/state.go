package component

import "fmt"

// State is the closed set of component lifecycle states.
//
// Healthy and Running are documented synonyms (integration-facing vs.
// component-facing vocabulary) but remain distinct members: nothing in the
// core may silently coerce one into the other.
type State int

const (
	StateUnknown State = iota
	StateRunning
	StateDegraded
	StateDown
	StateHealthy
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRunning:
		return "running"
	case StateDegraded:
		return "degraded"
	case StateDown:
		return "down"
	case StateHealthy:
		return "healthy"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState converts a state name back to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "unknown":
		return StateUnknown, nil
	case "running":
		return StateRunning, nil
	case "degraded":
		return StateDegraded, nil
	case "down":
		return StateDown, nil
	case "healthy":
		return StateHealthy, nil
	case "failed":
		return StateFailed, nil
	default:
		return StateUnknown, fmt.Errorf("component: unknown state %q", s)
	}
}

// IsCritical reports whether the state triggers alerting: exactly Degraded
// and Failed, per the alert contract.
func (s State) IsCritical() bool {
	switch s {
	case StateDegraded, StateFailed:
		return true
	case StateUnknown, StateRunning, StateDown, StateHealthy:
		return false
	default:
		return false
	}
}

// IsOperational reports whether the state counts as healthy for the
// self-healing loop. Both synonyms qualify; the members stay distinct.
func (s State) IsOperational() bool {
	switch s {
	case StateRunning, StateHealthy:
		return true
	case StateUnknown, StateDegraded, StateDown, StateFailed:
		return false
	default:
		return false
	}
}
