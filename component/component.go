package component

import "time"

// Component is the identity and state record for a registered unit. The ID is
// the canonical key everywhere in the core; display names never stand in for
// it. State changes go through the Registry so every transition is published.
type Component struct {
	// ID uniquely identifies the component.
	ID string `json:"id"`
	// State is the current lifecycle state.
	State State `json:"state"`
	// Version is an optional version string reported at registration.
	Version string `json:"version,omitempty"`
	// Type optionally categorizes the component ("storage", "ai", "ui", ...).
	Type string `json:"type,omitempty"`
	// RegisteredAt is when the component was registered.
	RegisteredAt time.Time `json:"registered_at"`
	// UpdatedAt is when the state last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
