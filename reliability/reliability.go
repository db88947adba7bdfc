package reliability

import (
	"context"
	"sync"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/event"
	"github.com/skillsenselab/healthcore/health"
	"github.com/skillsenselab/healthcore/integration"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/observability"
	"github.com/skillsenselab/healthcore/resilience"
)

// Publisher is the event sink diagnosis and recovery events go to.
type Publisher interface {
	Publish(e event.Event)
}

// Deps are the collaborators shared by both managers. Registry and Health
// are required; the rest are optional.
type Deps struct {
	Registry  *component.Registry
	Health    *health.Manager
	Publisher Publisher
	Points    *integration.PointRegistry
	Metrics   *observability.CoreMetrics
	Logger    *logger.Logger
}

func (d *Deps) applyDefaults() {
	if d.Logger == nil {
		d.Logger = logger.GetGlobalLogger().WithComponent("reliability")
	}
}

// currentState prefers the health manager's latest observation and falls
// back to the registry record.
func currentState(d Deps, id string) (component.State, bool) {
	if d.Health != nil {
		if snap, ok := d.Health.StatusFor(id); ok {
			return snap.State, true
		}
	}
	if d.Registry != nil {
		if c, ok := d.Registry.Get(id); ok {
			return c.State, true
		}
	}
	return component.StateUnknown, false
}

// ReliabilityManager runs self-diagnosis for one component.
type ReliabilityManager struct {
	componentID string
	deps        Deps
}

// NewReliabilityManager creates a diagnoser for the component.
func NewReliabilityManager(componentID string, deps Deps) *ReliabilityManager {
	deps.applyDefaults()
	return &ReliabilityManager{componentID: componentID, deps: deps}
}

// SelfDiagnose reads the component's current state and reports whether it
// was found healthy. An unhealthy finding is never swallowed: it is written
// back into the health history and emitted as a diagnosis event before the
// false return.
func (m *ReliabilityManager) SelfDiagnose(ctx context.Context, reason string) bool {
	state, _ := currentState(m.deps, m.componentID)
	if !state.IsCritical() {
		return true
	}

	if m.deps.Health != nil {
		m.deps.Health.SetStatus(m.componentID, state, "diagnosis: "+reason)
	}
	if m.deps.Publisher != nil {
		m.deps.Publisher.Publish(event.NewHealth(event.PriorityHigh, event.HealthPayload{
			Component: m.componentID,
			State:     state.String(),
			Reason:    event.ReasonDiagnosis,
		}))
	}
	m.deps.Logger.Warn("diagnosis found unhealthy component", logger.Fields(
		logger.FieldComponent, m.componentID,
		logger.FieldState, state.String(),
		logger.FieldReason, reason,
	))
	return false
}

// RecoveryManager repairs one component by driving it back to a healthy
// state.
type RecoveryManager struct {
	componentID string
	deps        Deps
	retry       resilience.RetryConfig

	mu sync.Mutex
}

// NewRecoveryManager creates a recovery manager for the component.
func NewRecoveryManager(componentID string, deps Deps, retry resilience.RetryConfig) *RecoveryManager {
	deps.applyDefaults()
	if retry.MaxAttempts <= 0 {
		retry = resilience.DefaultRetryConfig()
	}
	return &RecoveryManager{componentID: componentID, deps: deps, retry: retry}
}

// AttemptRecovery transitions the component to Healthy and reports whether
// it ended up healthy. Recovery is idempotent: an already-healthy component
// is a no-op that still returns true. Failure is a false return, not an
// error.
func (m *RecoveryManager) AttemptRecovery(ctx context.Context, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state, ok := currentState(m.deps, m.componentID); ok && state.IsOperational() {
		return true
	}

	err := resilience.Retry(ctx, m.retry, func(ctx context.Context) error {
		return m.recoverOnce(reason)
	})
	succeeded := err == nil

	m.deps.Metrics.RecordRecoveryAttempt(ctx, m.componentID, succeeded)
	if !succeeded {
		m.deps.Logger.Error("recovery failed", logger.Fields(
			logger.FieldComponent, m.componentID,
			logger.FieldReason, reason,
			"error", err.Error(),
		))
		return false
	}

	if m.deps.Publisher != nil {
		m.deps.Publisher.Publish(event.NewRecovery(event.HealthPayload{
			Component: m.componentID,
			State:     component.StateHealthy.String(),
			Reason:    event.ReasonRecovery,
		}, reason))
	}
	if m.deps.Points != nil {
		m.deps.Points.NotifyRecoveryAction(m.componentID, reason)
	}
	m.deps.Logger.Info("component recovered", logger.Fields(
		logger.FieldComponent, m.componentID,
		logger.FieldReason, reason,
	))
	return true
}

// recoverOnce writes the healthy state through the registry and health
// manager. The registry write fails for an unregistered component, which is
// what the retry loop sees.
func (m *RecoveryManager) recoverOnce(reason string) error {
	if m.deps.Registry != nil {
		if err := m.deps.Registry.SetState(m.componentID, component.StateHealthy); err != nil {
			return errors.RecoveryFailed(m.componentID, err.Error())
		}
	}
	if m.deps.Health != nil {
		m.deps.Health.SetStatus(m.componentID, component.StateHealthy, "recovery: "+reason)
	}
	return nil
}
