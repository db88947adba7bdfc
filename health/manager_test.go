package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/event"
)

func testConfig() ManagerConfig {
	return ManagerConfig{
		ProviderTimeout:    100 * time.Millisecond,
		BreakerMaxFailures: 2,
		BreakerCooldown:    time.Hour,
	}
}

type stubPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *stubPublisher) Publish(e event.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func staticProvider(state component.State, metrics []Metric) ProviderFunc {
	return ProviderFunc{
		MetricsFn: func(ctx context.Context) ([]Metric, error) { return metrics, nil },
		StatusFn:  func(ctx context.Context) (component.State, error) { return state, nil },
	}
}

func TestPushMetricsStoresFullList(t *testing.T) {
	m := NewManager(testConfig())
	ts := m.Thresholds()

	metrics := []Metric{
		NewMetric(ts, MetricCPU, 42),
		NewMetric(ts, MetricCPU, 55), // duplicate type preserved, not collapsed
		NewMetric(ts, MetricMemory, 30),
	}
	m.PushMetrics("api", metrics)

	snap, ok := m.StatusFor("api")
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if len(snap.Metrics) != 3 {
		t.Fatalf("expected 3 metrics stored as set, got %d", len(snap.Metrics))
	}
	if snap.Metrics[0].Value != 42 || snap.Metrics[1].Value != 55 {
		t.Error("metrics list order not preserved")
	}
}

func TestPushMetricsReplacesNotMerges(t *testing.T) {
	m := NewManager(testConfig())
	ts := m.Thresholds()

	m.PushMetrics("api", []Metric{NewMetric(ts, MetricCPU, 42)})
	m.PushMetrics("api", []Metric{NewMetric(ts, MetricMemory, 30)})

	snap, _ := m.StatusFor("api")
	if len(snap.Metrics) != 1 || snap.Metrics[0].Type != MetricMemory {
		t.Errorf("expected latest full list only, got %+v", snap.Metrics)
	}

	// But history keeps each observation.
	history := m.History("api", time.Time{}, time.Time{})
	if len(history) != 2 {
		t.Errorf("expected 2 history records, got %d", len(history))
	}
}

func TestWorstMetricDrivesState(t *testing.T) {
	m := NewManager(testConfig())
	ts := m.Thresholds()

	m.PushMetrics("api", []Metric{
		NewMetric(ts, MetricCPU, 42),
		NewMetric(ts, MetricCPU, 97), // above critical threshold
	})

	snap, _ := m.StatusFor("api")
	if snap.State != component.StateFailed {
		t.Errorf("expected failed, got %s", snap.State)
	}
}

func TestCollectSweepsProvidersInOrder(t *testing.T) {
	m := NewManager(testConfig())
	var mu sync.Mutex
	var order []string

	for _, id := range []string{"db", "cache", "llm"} {
		id := id
		m.RegisterProvider(id, ProviderFunc{
			StatusFn: func(ctx context.Context) (component.State, error) {
				mu.Lock()
				order = append(order, id)
				mu.Unlock()
				return component.StateRunning, nil
			},
		})
	}

	m.Collect(context.Background())

	want := []string{"db", "cache", "llm"}
	if len(order) != 3 {
		t.Fatalf("expected 3 provider calls, got %d", len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("sweep position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestCollectSkipsFailingProvider(t *testing.T) {
	m := NewManager(testConfig())

	m.RegisterProvider("bad", ProviderFunc{
		StatusFn: func(ctx context.Context) (component.State, error) {
			return component.StateUnknown, errors.New("sensor offline")
		},
	})
	m.RegisterProvider("good", staticProvider(component.StateRunning, nil))

	m.Collect(context.Background())

	if _, ok := m.StatusFor("bad"); ok {
		t.Error("failed provider with no prior state should have no snapshot")
	}
	snap, ok := m.StatusFor("good")
	if !ok || snap.State != component.StateRunning {
		t.Errorf("healthy provider skipped: %+v ok=%v", snap, ok)
	}
}

func TestCollectMarksStaleKeepsLastKnown(t *testing.T) {
	m := NewManager(testConfig())

	healthy := true
	m.RegisterProvider("flaky", ProviderFunc{
		StatusFn: func(ctx context.Context) (component.State, error) {
			if healthy {
				return component.StateRunning, nil
			}
			return component.StateUnknown, errors.New("flap")
		},
	})

	m.Collect(context.Background())
	healthy = false
	m.Collect(context.Background())

	snap, ok := m.StatusFor("flaky")
	if !ok {
		t.Fatal("expected last-known snapshot to survive")
	}
	if !snap.Stale {
		t.Error("expected stale indicator after provider failure")
	}
	if snap.State != component.StateRunning {
		t.Errorf("expected last-known running state, got %s", snap.State)
	}
}

func TestCollectTimesOutBlockedProvider(t *testing.T) {
	cfg := testConfig()
	cfg.ProviderTimeout = 20 * time.Millisecond
	m := NewManager(cfg)

	release := make(chan struct{})
	defer close(release)
	m.RegisterProvider("wedged", ProviderFunc{
		StatusFn: func(ctx context.Context) (component.State, error) {
			<-release
			return component.StateRunning, nil
		},
	})
	m.RegisterProvider("after", staticProvider(component.StateHealthy, nil))

	done := make(chan struct{})
	go func() {
		m.Collect(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep stalled on a blocked provider")
	}

	snap, ok := m.StatusFor("after")
	if !ok || snap.State != component.StateHealthy {
		t.Error("provider after the blocked one was not swept")
	}
}

func TestBreakerFastSkipsRepeatedlyFailingProvider(t *testing.T) {
	m := NewManager(testConfig()) // opens after 2 failures

	calls := 0
	m.RegisterProvider("down", ProviderFunc{
		StatusFn: func(ctx context.Context) (component.State, error) {
			calls++
			return component.StateUnknown, errors.New("dead")
		},
	})

	for i := 0; i < 5; i++ {
		m.Collect(context.Background())
	}

	if calls != 2 {
		t.Errorf("expected breaker to cap provider calls at 2, got %d", calls)
	}
}

func TestHealthyAndRunningStayDistinct(t *testing.T) {
	m := NewManager(testConfig())

	m.SetStatus("integration", component.StateHealthy, "")
	m.SetStatus("service", component.StateRunning, "")

	a, _ := m.StatusFor("integration")
	b, _ := m.StatusFor("service")
	if a.State != component.StateHealthy {
		t.Errorf("healthy was coerced to %s", a.State)
	}
	if b.State != component.StateRunning {
		t.Errorf("running was coerced to %s", b.State)
	}
}

func TestObservationEmitsHealthEvent(t *testing.T) {
	pub := &stubPublisher{}
	m := NewManager(testConfig(), WithPublisher(pub))

	m.SetStatus("api", component.StateDegraded, "latency spike")

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	e := pub.events[0]
	if e.GetString(event.KeyReason) != event.ReasonHealthUpdate {
		t.Errorf("wrong reason: %v", e.Payload)
	}
	if e.GetString(event.KeyState) != "degraded" {
		t.Errorf("wrong state: %v", e.Payload)
	}
	if e.Priority != event.PriorityHigh {
		t.Errorf("degraded observations are high priority, got %s", e.Priority)
	}
}

func TestObservationDrivesRegistryState(t *testing.T) {
	reg := component.NewRegistry()
	reg.Register("api")
	m := NewManager(testConfig(), WithRegistry(reg))

	m.SetStatus("api", component.StateFailed, "")

	c, _ := reg.Get("api")
	if c.State != component.StateFailed {
		t.Errorf("registry state not updated, got %s", c.State)
	}
}

func TestHistoryTimeRange(t *testing.T) {
	m := NewManager(testConfig())

	m.SetStatus("api", component.StateRunning, "")
	time.Sleep(5 * time.Millisecond)
	cut := time.Now().UTC()
	time.Sleep(5 * time.Millisecond)
	m.SetStatus("api", component.StateDegraded, "")

	all := m.History("api", time.Time{}, time.Time{})
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	recent := m.History("api", cut, time.Time{})
	if len(recent) != 1 || recent[0].State != component.StateDegraded {
		t.Errorf("expected only the degraded record, got %+v", recent)
	}
}

func TestUnregisterProvider(t *testing.T) {
	m := NewManager(testConfig())
	m.RegisterProvider("temp", staticProvider(component.StateRunning, nil))

	if !m.UnregisterProvider("temp") {
		t.Error("expected true for known provider")
	}
	if m.UnregisterProvider("temp") {
		t.Error("expected false for already-removed provider")
	}

	m.Collect(context.Background())
	if _, ok := m.StatusFor("temp"); ok {
		t.Error("unregistered provider was still swept")
	}
}

func TestThresholdDerivation(t *testing.T) {
	ts := DefaultThresholds()
	tests := []struct {
		mt    MetricType
		value float64
		want  component.State
	}{
		{MetricCPU, 50, component.StateRunning},
		{MetricCPU, 85, component.StateDegraded},
		{MetricCPU, 96, component.StateFailed},
		{MetricErrorRate, 0.01, component.StateRunning},
		{MetricErrorRate, 0.10, component.StateDegraded},
		{MetricErrorRate, 0.30, component.StateFailed},
		{MetricCustom, 1e9, component.StateRunning}, // no thresholds configured
	}
	for _, tt := range tests {
		if got := ts.Derive(tt.mt, tt.value); got != tt.want {
			t.Errorf("Derive(%s, %v) = %s, want %s", tt.mt, tt.value, got, tt.want)
		}
	}
}
