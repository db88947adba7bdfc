package health

import (
	"context"
	"sync"
	"time"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/event"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/observability"
	"github.com/skillsenselab/healthcore/resilience"
)

// StatusRecord is one append-only history entry for a component.
type StatusRecord struct {
	ComponentID string          `json:"component_id"`
	State       component.State `json:"state"`
	Timestamp   time.Time       `json:"timestamp"`
	Metrics     []Metric        `json:"metrics,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// Snapshot is the manager's current view of one component.
type Snapshot struct {
	ComponentID string          `json:"component_id"`
	State       component.State `json:"state"`
	Metrics     []Metric        `json:"metrics,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	// Stale marks a component whose provider failed on the most recent
	// sweep; State then is the last-known state, not a fresh reading.
	Stale bool `json:"stale"`
}

// ManagerConfig tunes the collection sweep.
type ManagerConfig struct {
	// ProviderTimeout bounds a single provider call during Collect.
	ProviderTimeout time.Duration
	// BreakerMaxFailures opens a provider's breaker after this many
	// consecutive failures.
	BreakerMaxFailures int
	// BreakerCooldown is how long an open breaker fast-skips its provider.
	BreakerCooldown time.Duration
}

// ApplyDefaults fills zero fields.
func (c *ManagerConfig) ApplyDefaults() {
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 5 * time.Second
	}
	if c.BreakerMaxFailures <= 0 {
		c.BreakerMaxFailures = 3
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = 30 * time.Second
	}
}

// Manager aggregates metrics and status per component, accepting push
// updates and pulling from registered providers. Every observation is
// timestamped into that component's append-only history.
type Manager struct {
	mu            sync.RWMutex
	providers     map[string]Provider
	providerOrder []string
	latest        map[string]*Snapshot
	history       map[string][]StatusRecord
	breakers      map[string]*resilience.CircuitBreaker

	cfg        ManagerConfig
	thresholds ThresholdSet
	registry   *component.Registry
	publisher  component.Publisher
	metrics    *observability.CoreMetrics
	log        *logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRegistry links the manager to the component registry so status
// observations also drive registry state.
func WithRegistry(r *component.Registry) ManagerOption {
	return func(m *Manager) { m.registry = r }
}

// WithPublisher attaches the event bus for health events.
func WithPublisher(p component.Publisher) ManagerOption {
	return func(m *Manager) { m.publisher = p }
}

// WithMetrics attaches otel instruments.
func WithMetrics(om *observability.CoreMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = om }
}

// WithThresholds overrides the default threshold set.
func WithThresholds(ts ThresholdSet) ManagerOption {
	return func(m *Manager) { m.thresholds = ts }
}

// WithLogger sets the manager logger.
func WithLogger(l *logger.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a health manager.
func NewManager(cfg ManagerConfig, opts ...ManagerOption) *Manager {
	cfg.ApplyDefaults()
	m := &Manager{
		providers:  make(map[string]Provider),
		latest:     make(map[string]*Snapshot),
		history:    make(map[string][]StatusRecord),
		breakers:   make(map[string]*resilience.CircuitBreaker),
		cfg:        cfg,
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.GetGlobalLogger().WithComponent("health")
	}
	return m
}

// Thresholds returns the manager's threshold set for metric construction.
func (m *Manager) Thresholds() ThresholdSet {
	return m.thresholds
}

// RegisterProvider registers a pull-based provider keyed by component id.
// Re-registering an id replaces the provider but keeps its sweep position.
func (m *Manager) RegisterProvider(id string, p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.providers[id]; !exists {
		m.providerOrder = append(m.providerOrder, id)
		m.breakers[id] = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        id,
			MaxFailures: m.cfg.BreakerMaxFailures,
			Cooldown:    m.cfg.BreakerCooldown,
		})
	}
	m.providers[id] = p
}

// UnregisterProvider removes a provider. Returns false for unknown ids.
func (m *Manager) UnregisterProvider(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.providers[id]; !exists {
		return false
	}
	delete(m.providers, id)
	delete(m.breakers, id)
	for i, v := range m.providerOrder {
		if v == id {
			m.providerOrder = append(m.providerOrder[:i], m.providerOrder[i+1:]...)
			break
		}
	}
	return true
}

// SetStatus is the push path for a status observation.
func (m *Manager) SetStatus(id string, state component.State, message string) {
	m.observe(id, state, nil, message, false)
}

// PushMetrics is the push path for a full metrics list. The list is stored
// exactly as given, alongside a status derived from the worst metric.
func (m *Manager) PushMetrics(id string, metrics []Metric) {
	state := worstOf(metrics)
	m.observe(id, state, metrics, "", false)
}

// Collect sweeps every registered provider once, in registration order. A
// provider that errors, panics, or exceeds the timeout is skipped and its
// last-known snapshot marked stale; the sweep always continues.
func (m *Manager) Collect(ctx context.Context) {
	start := time.Now()

	m.mu.RLock()
	ids := make([]string, len(m.providerOrder))
	copy(ids, m.providerOrder)
	m.mu.RUnlock()

	failures := 0
	for _, id := range ids {
		m.mu.RLock()
		p, ok := m.providers[id]
		cb := m.breakers[id]
		m.mu.RUnlock()
		if !ok {
			continue
		}

		err := cb.Execute(func() error {
			return m.collectOne(ctx, id, p)
		})
		if err != nil {
			failures++
			m.markStale(id)
			kind := "error"
			switch {
			case err == resilience.ErrCircuitOpen:
				kind = "breaker-open"
			case errors.IsCode(err, errors.ErrCodeProviderTimeout):
				kind = "timeout"
			}
			m.metrics.RecordProviderFailure(ctx, id, kind)
			m.log.Warn("provider failed, skipping", logger.Fields(
				logger.FieldComponent, id,
				logger.FieldError, err.Error(),
			))
		}
	}

	m.metrics.RecordCollectSweep(ctx, time.Since(start), failures)
}

// collectOne pulls one provider under the configured timeout. The provider
// runs in its own goroutine so a blocked call cannot stall the sweep past
// the deadline.
func (m *Manager) collectOne(ctx context.Context, id string, p Provider) error {
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.ProviderTimeout)
	defer cancel()

	type result struct {
		metrics []Metric
		state   component.State
		err     error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: errors.ProviderFailure(id, nil).WithDetail("panic", r)}
			}
		}()
		metrics, err := p.HealthMetrics(callCtx)
		if err != nil {
			ch <- result{err: errors.ProviderFailure(id, err)}
			return
		}
		state, err := p.HealthStatus(callCtx)
		if err != nil {
			ch <- result{err: errors.ProviderFailure(id, err)}
			return
		}
		ch <- result{metrics: metrics, state: state}
	}()

	select {
	case <-callCtx.Done():
		return errors.ProviderTimeout(id)
	case res := <-ch:
		if res.err != nil {
			return res.err
		}
		m.observe(id, res.state, res.metrics, "", false)
		return nil
	}
}

// observe records a status observation: latest snapshot, history append,
// registry propagation, and a health event.
func (m *Manager) observe(id string, state component.State, metrics []Metric, message string, stale bool) {
	now := time.Now().UTC()

	m.mu.Lock()
	snap := &Snapshot{
		ComponentID: id,
		State:       state,
		Metrics:     copyMetrics(metrics),
		Timestamp:   now,
		Stale:       stale,
	}
	m.latest[id] = snap
	m.history[id] = append(m.history[id], StatusRecord{
		ComponentID: id,
		State:       state,
		Timestamp:   now,
		Metrics:     copyMetrics(metrics),
		Message:     message,
	})
	m.mu.Unlock()

	if m.registry != nil {
		if _, ok := m.registry.Get(id); ok {
			// Registry publishes its own state-changed event.
			_ = m.registry.SetState(id, state)
		}
	}
	if m.publisher != nil {
		m.publisher.Publish(event.NewHealth(priorityFor(state), event.HealthPayload{
			Component: id,
			State:     state.String(),
			Reason:    event.ReasonHealthUpdate,
		}))
	}
}

// markStale flags the last-known snapshot instead of discarding it: queries
// see the previous state plus an explicit stale indicator.
func (m *Manager) markStale(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.latest[id]; ok {
		snap.Stale = true
	}
}

// StatusFor returns the current snapshot for a component.
func (m *Manager) StatusFor(id string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.latest[id]
	if !ok {
		return Snapshot{}, false
	}
	out := *snap
	out.Metrics = copyMetrics(snap.Metrics)
	return out, true
}

// AllStatuses returns the current snapshot of every observed component.
func (m *Manager) AllStatuses() map[string]Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Snapshot, len(m.latest))
	for id, snap := range m.latest {
		cp := *snap
		cp.Metrics = copyMetrics(snap.Metrics)
		out[id] = cp
	}
	return out
}

// History returns the append-only status history for a component, optionally
// bounded to [since, until]. Zero bounds are open.
func (m *Manager) History(id string, since, until time.Time) []StatusRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []StatusRecord
	for _, rec := range m.history[id] {
		if !since.IsZero() && rec.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && rec.Timestamp.After(until) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func priorityFor(state component.State) event.Priority {
	switch state {
	case component.StateFailed:
		return event.PriorityCritical
	case component.StateDegraded, component.StateDown:
		return event.PriorityHigh
	case component.StateUnknown, component.StateRunning, component.StateHealthy:
		return event.PriorityNormal
	default:
		return event.PriorityNormal
	}
}

// worstOf folds a metrics list into a single state, preferring the most
// severe derived status. An empty list folds to Running.
func worstOf(metrics []Metric) component.State {
	state := component.StateRunning
	for _, m := range metrics {
		switch m.Status {
		case component.StateFailed:
			return component.StateFailed
		case component.StateDegraded:
			state = component.StateDegraded
		case component.StateDown:
			if state != component.StateDegraded {
				state = component.StateDown
			}
		case component.StateUnknown, component.StateRunning, component.StateHealthy:
		}
	}
	return state
}

func copyMetrics(in []Metric) []Metric {
	if len(in) == 0 {
		return nil
	}
	out := make([]Metric, len(in))
	copy(out, in)
	return out
}
