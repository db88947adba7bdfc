package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/event"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/reliability"
	"github.com/skillsenselab/healthcore/resilience"
)

// CheckResult is the outcome of one monitoring check.
type CheckResult struct {
	ComponentID string
	// HealthyBefore is the diagnosis outcome at the start of the check.
	HealthyBefore bool
	// Recovered is set when recovery ran and left the component healthy.
	Recovered bool
	// FinalState is the verified state at the end of the check.
	FinalState component.State
}

// Orchestrator chains diagnosis, recovery, and verification per component
// and publishes the resulting status.
type Orchestrator struct {
	deps   reliability.Deps
	retry  resilience.RetryConfig
	tracer trace.Tracer
	log    *logger.Logger
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithTracer attaches a tracer for check spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// WithRetry overrides the recovery retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = cfg }
}

// WithLogger overrides the default logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an orchestrator over the shared collaborators.
func New(deps reliability.Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:   deps,
		retry:  resilience.DefaultRetryConfig(),
		tracer: noop.NewTracerProvider().Tracer("orchestrator"),
		log:    logger.GetGlobalLogger().WithComponent("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunCheck runs the monitoring chain for one component: diagnose, recover if
// the diagnosis came back unhealthy, verify, and emit the final status.
func (o *Orchestrator) RunCheck(ctx context.Context, componentID, reason string) CheckResult {
	ctx, span := o.tracer.Start(ctx, "orchestrator.check", trace.WithAttributes(
		attribute.String("component.id", componentID),
	))
	defer span.End()

	result := CheckResult{ComponentID: componentID}

	diag := reliability.NewReliabilityManager(componentID, o.deps)
	result.HealthyBefore = diag.SelfDiagnose(ctx, reason)
	span.SetAttributes(attribute.Bool("check.healthy_before", result.HealthyBefore))

	if !result.HealthyBefore {
		rec := reliability.NewRecoveryManager(componentID, o.deps, o.retry)
		result.Recovered = rec.AttemptRecovery(ctx, reason)
		span.SetAttributes(attribute.Bool("check.recovered", result.Recovered))
	}

	result.FinalState = o.verify(componentID)
	span.SetAttributes(attribute.String("check.final_state", result.FinalState.String()))

	o.emitFinal(componentID, result.FinalState)
	o.log.Debug("check complete", logger.Fields(
		logger.FieldComponent, componentID,
		logger.FieldState, result.FinalState.String(),
		"recovered", result.Recovered,
	))
	return result
}

// RunChecks runs the chain across every registered component in
// registration order.
func (o *Orchestrator) RunChecks(ctx context.Context, reason string) []CheckResult {
	if o.deps.Registry == nil {
		return nil
	}
	components := o.deps.Registry.All()
	results := make([]CheckResult, 0, len(components))
	for _, c := range components {
		if err := ctx.Err(); err != nil {
			break
		}
		results = append(results, o.RunCheck(ctx, c.ID, reason))
	}
	return results
}

func (o *Orchestrator) verify(componentID string) component.State {
	if o.deps.Health != nil {
		if snap, ok := o.deps.Health.StatusFor(componentID); ok {
			return snap.State
		}
	}
	if o.deps.Registry != nil {
		if c, ok := o.deps.Registry.Get(componentID); ok {
			return c.State
		}
	}
	return component.StateUnknown
}

func (o *Orchestrator) emitFinal(componentID string, state component.State) {
	if o.deps.Publisher == nil {
		return
	}
	priority := event.PriorityNormal
	if state.IsCritical() {
		priority = event.PriorityHigh
	}
	o.deps.Publisher.Publish(event.NewHealth(priority, event.HealthPayload{
		Component: componentID,
		State:     state.String(),
		Reason:    event.ReasonHealthUpdate,
	}))
}

// Collect runs the health manager's provider sweep, when one is wired.
func (o *Orchestrator) Collect(ctx context.Context) {
	if o.deps.Health != nil {
		o.deps.Health.Collect(ctx)
	}
}
