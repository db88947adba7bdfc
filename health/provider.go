package health

import (
	"context"

	"github.com/skillsenselab/healthcore/component"
)

// Provider is the capability a component exposes so the manager can pull its
// health. Conformance is checked at compile time by the interface itself;
// registration performs no reflective validation.
type Provider interface {
	// HealthMetrics returns the current full metrics list. The manager
	// stores the list exactly as returned.
	HealthMetrics(ctx context.Context) ([]Metric, error)

	// HealthStatus returns the component's current state.
	HealthStatus(ctx context.Context) (component.State, error)
}

// ProviderFunc adapts a pair of closures into a Provider.
type ProviderFunc struct {
	MetricsFn func(ctx context.Context) ([]Metric, error)
	StatusFn  func(ctx context.Context) (component.State, error)
}

// HealthMetrics implements Provider.
func (p ProviderFunc) HealthMetrics(ctx context.Context) ([]Metric, error) {
	if p.MetricsFn == nil {
		return nil, nil
	}
	return p.MetricsFn(ctx)
}

// HealthStatus implements Provider.
func (p ProviderFunc) HealthStatus(ctx context.Context) (component.State, error) {
	if p.StatusFn == nil {
		return component.StateUnknown, nil
	}
	return p.StatusFn(ctx)
}
