package integration

import (
	"sync"
	"time"
)

// Point is a named integration point with an opaque value, typically an
// endpoint or handle the integration exposes.
type Point struct {
	Name         string    `json:"name"`
	Value        any       `json:"value"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PointRegistry tracks integration points by name. Re-registering a name
// updates the stored value in place; the listing order is always first
// registration order.
type PointRegistry struct {
	mu     sync.RWMutex
	order  []string
	points map[string]*Point
}

// NewPointRegistry creates an empty point registry.
func NewPointRegistry() *PointRegistry {
	return &PointRegistry{points: make(map[string]*Point)}
}

// RegisterPoint stores or updates a point. The name appears at most once in
// Points, at the position of its first registration.
func (r *PointRegistry) RegisterPoint(name string, value any) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.points[name]; ok {
		p.Value = value
		p.UpdatedAt = now
		return
	}
	r.points[name] = &Point{Name: name, Value: value, RegisteredAt: now, UpdatedAt: now}
	r.order = append(r.order, name)
}

// Point returns the point by name.
func (r *PointRegistry) Point(name string) (Point, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.points[name]
	if !ok {
		return Point{}, false
	}
	return *p, true
}

// Points returns point names in first-registration order.
func (r *PointRegistry) Points() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AllPoints returns every point in first-registration order.
func (r *PointRegistry) AllPoints() []Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Point, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.points[name])
	}
	return out
}

// NotifyRecoveryAction records a recovery action taken for a component as a
// "recovery:<component>" point so operators can see the last action applied.
func (r *PointRegistry) NotifyRecoveryAction(componentID, action string) {
	r.RegisterPoint("recovery:"+componentID, action)
}
