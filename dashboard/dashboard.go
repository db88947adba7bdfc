package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/health"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/observability"
)

// Alert records a state transition into an alerting state.
type Alert struct {
	Component string          `json:"component"`
	From      component.State `json:"from"`
	To        component.State `json:"to"`
	Timestamp time.Time       `json:"timestamp"`
}

// AlertCallback receives alerts for transitions into Degraded or Failed.
type AlertCallback func(Alert)

// WatchCallback receives every observed update for a watched component,
// whether or not the state changed.
type WatchCallback func(componentID string, state component.State)

// Dashboard is the read surface over component status. It tracks the last
// observed state per component and drives alert and watch callbacks.
//
// Callbacks run on a single dispatch worker so a slow callback never blocks
// the observer. WithSyncDispatch runs them inline instead, which tests rely
// on for determinism.
type Dashboard struct {
	mu       sync.Mutex
	states   map[string]component.State
	alertCbs []AlertCallback
	watchers map[string][]WatchCallback
	alerts   []Alert

	registry *component.Registry
	health   *health.Manager
	metrics  *observability.CoreMetrics
	log      *logger.Logger

	syncDispatch bool
	jobs         chan func()
	done         chan struct{}
	closeOnce    sync.Once
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithRegistry attaches the component registry backing Graph.
func WithRegistry(r *component.Registry) Option {
	return func(d *Dashboard) { d.registry = r }
}

// WithHealthManager attaches the health manager backing StatusFor,
// AllStatuses and History.
func WithHealthManager(m *health.Manager) Option {
	return func(d *Dashboard) { d.health = m }
}

// WithMetrics records alert counts.
func WithMetrics(m *observability.CoreMetrics) Option {
	return func(d *Dashboard) { d.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dashboard) { d.log = l }
}

// WithSyncDispatch runs callbacks inline on the observing goroutine.
func WithSyncDispatch() Option {
	return func(d *Dashboard) { d.syncDispatch = true }
}

// New creates a dashboard and starts its dispatch worker unless sync
// dispatch was requested.
func New(opts ...Option) *Dashboard {
	d := &Dashboard{
		states:   make(map[string]component.State),
		watchers: make(map[string][]WatchCallback),
		log:      logger.GetGlobalLogger().WithComponent("dashboard"),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if !d.syncDispatch {
		d.jobs = make(chan func(), 256)
		go d.dispatch()
	}
	return d
}

func (d *Dashboard) dispatch() {
	for job := range d.jobs {
		job()
	}
	close(d.done)
}

func (d *Dashboard) submit(job func()) {
	if d.syncDispatch {
		job()
		return
	}
	d.jobs <- job
}

// Close stops the dispatch worker after draining queued callbacks.
func (d *Dashboard) Close() {
	d.closeOnce.Do(func() {
		if d.syncDispatch {
			return
		}
		close(d.jobs)
		<-d.done
	})
}

// Sync blocks until every callback queued before the call has run.
func (d *Dashboard) Sync() {
	if d.syncDispatch {
		return
	}
	flushed := make(chan struct{})
	d.jobs <- func() { close(flushed) }
	<-flushed
}

// RegisterAlertCallback subscribes to transitions into Degraded or Failed.
// A Degraded to Failed change (and the reverse) is a fresh alert; repeated
// observations of the same state are not.
func (d *Dashboard) RegisterAlertCallback(cb AlertCallback) {
	d.mu.Lock()
	d.alertCbs = append(d.alertCbs, cb)
	d.mu.Unlock()
}

// WatchComponent subscribes to every observed update for one component.
func (d *Dashboard) WatchComponent(componentID string, cb WatchCallback) {
	d.mu.Lock()
	d.watchers[componentID] = append(d.watchers[componentID], cb)
	d.mu.Unlock()
}

// Observe records an observed state for a component. Watch callbacks fire on
// every call; alert callbacks only when the state changed into an alerting
// state.
func (d *Dashboard) Observe(componentID string, state component.State) {
	d.mu.Lock()
	prev, seen := d.states[componentID]
	d.states[componentID] = state

	var alert *Alert
	if state.IsCritical() && (!seen || state != prev) {
		a := Alert{Component: componentID, From: prev, To: state, Timestamp: time.Now().UTC()}
		d.alerts = append(d.alerts, a)
		alert = &a
	}

	alertCbs := make([]AlertCallback, len(d.alertCbs))
	copy(alertCbs, d.alertCbs)
	watchCbs := make([]WatchCallback, len(d.watchers[componentID]))
	copy(watchCbs, d.watchers[componentID])
	d.mu.Unlock()

	if alert != nil {
		d.metrics.RecordAlert(context.Background(), componentID, state.String())
		d.log.Warn("alert", logger.Fields(
			logger.FieldComponent, componentID,
			logger.FieldState, state.String(),
			"previous", prev.String(),
		))
	}

	d.submit(func() {
		if alert != nil {
			for _, cb := range alertCbs {
				cb(*alert)
			}
		}
		for _, cb := range watchCbs {
			cb(componentID, state)
		}
	})
}

// ObservedState returns the last observed state for a component.
func (d *Dashboard) ObservedState(componentID string) (component.State, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.states[componentID]
	return s, ok
}

// Alerts returns the alert history in firing order.
func (d *Dashboard) Alerts() []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Alert, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// StatusFor returns the latest health snapshot for a component.
func (d *Dashboard) StatusFor(componentID string) (health.Snapshot, bool) {
	if d.health == nil {
		return health.Snapshot{}, false
	}
	return d.health.StatusFor(componentID)
}

// AllStatuses returns the latest snapshot for every tracked component.
func (d *Dashboard) AllStatuses() map[string]health.Snapshot {
	if d.health == nil {
		return map[string]health.Snapshot{}
	}
	return d.health.AllStatuses()
}

// History returns a component's status records inside the time range.
func (d *Dashboard) History(componentID string, since, until time.Time) []health.StatusRecord {
	if d.health == nil {
		return nil
	}
	return d.health.History(componentID, since, until)
}

// Graph returns the dependency adjacency in insertion order.
func (d *Dashboard) Graph() map[string][]string {
	if d.registry == nil {
		return map[string][]string{}
	}
	return d.registry.Graph()
}

// SupportsCascadingStatus reports whether observing a component cascades a
// status change onto its dependents. The dashboard reports per-component
// status only; impact analysis is the registry's job.
func (d *Dashboard) SupportsCascadingStatus() bool { return false }
