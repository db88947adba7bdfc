package component

import (
	"context"
	"sync"
	"time"

	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/event"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/observability"
)

// Publisher is the slice of the event bus the registry needs. Keeping it an
// interface lets tests register a capture function instead of a full bus.
type Publisher interface {
	Publish(event.Event)
}

// Registry coordinates component registration, dependency declaration, and
// state transitions. It is an explicitly constructed instance passed by
// reference to every consumer; process-wide uniqueness is a composition-root
// concern, not a package-level singleton.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Component
	order      []string
	graph      *DependencyGraph

	publisher Publisher
	metrics   *observability.CoreMetrics
	log       *logger.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPublisher attaches the event bus used for lifecycle events.
func WithPublisher(p Publisher) RegistryOption {
	return func(r *Registry) { r.publisher = p }
}

// WithMetrics attaches otel instruments.
func WithMetrics(m *observability.CoreMetrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithLogger sets the registry logger.
func WithLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates a component registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		components: make(map[string]*Component),
		graph:      NewDependencyGraph(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.GetGlobalLogger().WithComponent("registry")
	}
	return r
}

// RegisterOption configures a component at registration time.
type RegisterOption func(*Component)

// WithState sets the initial state (default Unknown).
func WithState(s State) RegisterOption {
	return func(c *Component) { c.State = s }
}

// WithVersion sets the component version.
func WithVersion(v string) RegisterOption {
	return func(c *Component) { c.Version = v }
}

// WithType sets the component type.
func WithType(t string) RegisterOption {
	return func(c *Component) { c.Type = t }
}

// Register adds a component under a globally unique id. Re-registering a live
// id is a structural error, not an idempotent update.
func (r *Registry) Register(id string, opts ...RegisterOption) (Component, error) {
	if id == "" {
		return Component{}, errors.InvalidInput("id", "component id is required")
	}

	r.mu.Lock()
	if _, exists := r.components[id]; exists {
		r.mu.Unlock()
		return Component{}, errors.DuplicateComponent(id)
	}

	now := time.Now().UTC()
	c := &Component{
		ID:           id,
		State:        StateUnknown,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(c)
	}
	r.components[id] = c
	r.order = append(r.order, id)
	snapshot := *c
	r.mu.Unlock()

	r.log.Debug("component registered", logger.Fields(
		logger.FieldComponent, id,
		logger.FieldState, snapshot.State.String(),
	))
	r.emit(event.PriorityNormal, id, snapshot.State, event.ReasonRegistered)

	return snapshot, nil
}

// Unregister removes a component and every dependency edge that references
// it. Unknown ids return false rather than an error.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	c, exists := r.components[id]
	if !exists {
		r.mu.Unlock()
		return false
	}
	lastState := c.State
	delete(r.components, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.graph.RemoveNode(id)
	r.mu.Unlock()

	r.log.Debug("component unregistered", logger.Fields(logger.FieldComponent, id))
	r.emit(event.PriorityNormal, id, lastState, event.ReasonUnregistered)

	return true
}

// DeclareDependency records that dependent requires dependency. Both
// endpoints must already be registered; otherwise it returns false and
// records nothing.
func (r *Registry) DeclareDependency(dependent, dependency string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.components[dependent]; !ok {
		r.log.Warn("dependency declared before registration", logger.Fields(
			logger.FieldComponent, dependent,
		))
		return false
	}
	if _, ok := r.components[dependency]; !ok {
		r.log.Warn("dependency declared before registration", logger.Fields(
			logger.FieldComponent, dependency,
		))
		return false
	}

	r.graph.AddEdge(dependent, dependency)
	return true
}

// SetState transitions a component's state. Publishing is unconditional: a
// same-to-same transition still emits a state-changed event, and only the
// dashboard layer applies transition-sensitive filtering.
func (r *Registry) SetState(id string, state State) error {
	r.mu.Lock()
	c, exists := r.components[id]
	if !exists {
		r.mu.Unlock()
		return errors.UnknownComponent(id)
	}
	c.State = state
	c.UpdatedAt = time.Now().UTC()
	r.mu.Unlock()

	r.metrics.RecordStateTransition(context.Background(), id, state.String())
	r.emit(event.PriorityHigh, id, state, event.ReasonStateChanged)

	return nil
}

// Get returns a copy of the component record.
func (r *Registry) Get(id string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[id]
	if !ok {
		return Component{}, false
	}
	return *c, true
}

// All returns copies of every component in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.components[id])
	}
	return out
}

// Dependencies returns the direct dependencies of id in declaration order.
func (r *Registry) Dependencies(id string) []string {
	return r.graph.Dependencies(id)
}

// Dependents returns the direct dependents of id in declaration order.
func (r *Registry) Dependents(id string) []string {
	return r.graph.Dependents(id)
}

// Graph returns the full dependency mapping, id -> ordered direct
// dependencies.
func (r *Registry) Graph() map[string][]string {
	return r.graph.Snapshot()
}

// ImpactOf returns the transitive dependents of id in first-discovery order.
func (r *Registry) ImpactOf(id string) []string {
	return r.graph.ImpactOf(id)
}

// FindCycles surfaces nodes participating in dependency cycles.
func (r *Registry) FindCycles() []string {
	return r.graph.FindCycles()
}

func (r *Registry) emit(priority event.Priority, id string, state State, reason string) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(event.NewHealth(priority, event.HealthPayload{
		Component: id,
		State:     state.String(),
		Reason:    reason,
	}))
}
