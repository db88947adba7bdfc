package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CoreMetrics holds the instruments shared across the monitoring core:
// event bus throughput, health collection sweeps, state transitions,
// alerting, and recovery outcomes.
type CoreMetrics struct {
	eventPublished   metric.Int64Counter
	eventDelivered   metric.Int64Counter
	deliveryFailure  metric.Int64Counter
	stateTransition  metric.Int64Counter
	collectDuration  metric.Float64Histogram
	providerFailure  metric.Int64Counter
	alertFired       metric.Int64Counter
	recoveryAttempt  metric.Int64Counter
}

// NewCoreMetrics creates the core instrument set on the given meter.
func NewCoreMetrics(meter metric.Meter) (*CoreMetrics, error) {
	eventPublished, err := meter.Int64Counter("bus.event.published",
		metric.WithDescription("Events published, by category"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.event.published counter: %w", err)
	}

	eventDelivered, err := meter.Int64Counter("bus.event.delivered",
		metric.WithDescription("Successful subscriber deliveries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.event.delivered counter: %w", err)
	}

	deliveryFailure, err := meter.Int64Counter("bus.delivery.failure",
		metric.WithDescription("Subscriber callbacks that errored or panicked"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bus.delivery.failure counter: %w", err)
	}

	stateTransition, err := meter.Int64Counter("component.state.transition",
		metric.WithDescription("Component state transitions, by target state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating component.state.transition counter: %w", err)
	}

	collectDuration, err := meter.Float64Histogram("health.collect.duration",
		metric.WithDescription("Duration of a full metric collection sweep in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating health.collect.duration histogram: %w", err)
	}

	providerFailure, err := meter.Int64Counter("health.provider.failure",
		metric.WithDescription("Provider errors and timeouts during sweeps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating health.provider.failure counter: %w", err)
	}

	alertFired, err := meter.Int64Counter("dashboard.alert.fired",
		metric.WithDescription("Alert callbacks fired on critical transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dashboard.alert.fired counter: %w", err)
	}

	recoveryAttempt, err := meter.Int64Counter("reliability.recovery.attempt",
		metric.WithDescription("Recovery attempts, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reliability.recovery.attempt counter: %w", err)
	}

	return &CoreMetrics{
		eventPublished:  eventPublished,
		eventDelivered:  eventDelivered,
		deliveryFailure: deliveryFailure,
		stateTransition: stateTransition,
		collectDuration: collectDuration,
		providerFailure: providerFailure,
		alertFired:      alertFired,
		recoveryAttempt: recoveryAttempt,
	}, nil
}

// RecordPublish counts a published event.
func (m *CoreMetrics) RecordPublish(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.eventPublished.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordDelivery counts a successful subscriber delivery.
func (m *CoreMetrics) RecordDelivery(ctx context.Context) {
	if m == nil {
		return
	}
	m.eventDelivered.Add(ctx, 1)
}

// RecordDeliveryFailure counts an isolated subscriber callback failure.
func (m *CoreMetrics) RecordDeliveryFailure(ctx context.Context, subscriber string) {
	if m == nil {
		return
	}
	m.deliveryFailure.Add(ctx, 1, metric.WithAttributes(attribute.String("subscriber", subscriber)))
}

// RecordStateTransition counts a component state change.
func (m *CoreMetrics) RecordStateTransition(ctx context.Context, component, state string) {
	if m == nil {
		return
	}
	m.stateTransition.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("state", state),
	))
}

// RecordCollectSweep records the duration of a completed collection sweep.
func (m *CoreMetrics) RecordCollectSweep(ctx context.Context, duration time.Duration, failures int) {
	if m == nil {
		return
	}
	m.collectDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Int("failures", failures),
	))
}

// RecordProviderFailure counts a provider error or timeout.
func (m *CoreMetrics) RecordProviderFailure(ctx context.Context, component, kind string) {
	if m == nil {
		return
	}
	m.providerFailure.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("kind", kind),
	))
}

// RecordAlert counts a fired alert.
func (m *CoreMetrics) RecordAlert(ctx context.Context, component, state string) {
	if m == nil {
		return
	}
	m.alertFired.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("state", state),
	))
}

// RecordRecoveryAttempt counts a recovery attempt with its outcome.
func (m *CoreMetrics) RecordRecoveryAttempt(ctx context.Context, component string, succeeded bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	m.recoveryAttempt.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("outcome", outcome),
	))
}
