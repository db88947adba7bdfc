package component

import (
	"sync"
	"testing"

	apperrors "github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/event"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *capturePublisher) Publish(e event.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *capturePublisher) byReason(reason string) []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Event
	for _, e := range p.events {
		if e.GetString(event.KeyReason) == reason {
			out = append(out, e)
		}
	}
	return out
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	c, err := r.Register("vector-store", WithState(StateRunning), WithVersion("1.2.0"), WithType("storage"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if c.State != StateRunning || c.Version != "1.2.0" || c.Type != "storage" {
		t.Errorf("unexpected component: %+v", c)
	}

	got, ok := r.Get("vector-store")
	if !ok {
		t.Fatal("expected to find registered component")
	}
	if got.ID != "vector-store" {
		t.Errorf("expected vector-store, got %s", got.ID)
	}
}

func TestRegisterDefaultsToUnknown(t *testing.T) {
	r := NewRegistry()
	c, err := r.Register("fresh")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if c.State != StateUnknown {
		t.Errorf("expected unknown, got %s", c.State)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	r.Register("db")

	_, err := r.Register("db")
	if err == nil {
		t.Fatal("expected error for duplicate registration")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeDuplicateComponent) {
		t.Errorf("expected DUPLICATE_COMPONENT, got %v", err)
	}
}

func TestRegisterEmitsEvent(t *testing.T) {
	pub := &capturePublisher{}
	r := NewRegistry(WithPublisher(pub))
	r.Register("db", WithState(StateRunning))

	events := pub.byReason(event.ReasonRegistered)
	if len(events) != 1 {
		t.Fatalf("expected 1 registered event, got %d", len(events))
	}
	if events[0].GetString(event.KeyComponent) != "db" {
		t.Errorf("wrong component in payload: %v", events[0].Payload)
	}
	if events[0].GetString(event.KeyState) != "running" {
		t.Errorf("wrong state in payload: %v", events[0].Payload)
	}
}

func TestUnregisterUnknownReturnsFalse(t *testing.T) {
	r := NewRegistry()
	if r.Unregister("ghost") {
		t.Error("expected false for unknown id")
	}
}

func TestUnregisterRemovesEdges(t *testing.T) {
	r := NewRegistry()
	r.Register("A")
	r.Register("B")
	r.Register("C")
	r.DeclareDependency("A", "B")
	r.DeclareDependency("B", "C")

	if !r.Unregister("B") {
		t.Fatal("expected Unregister to succeed")
	}

	graph := r.Graph()
	if _, ok := graph["B"]; ok {
		t.Error("B still a key in the dependency graph")
	}
	for id, deps := range graph {
		for _, d := range deps {
			if d == "B" {
				t.Errorf("B still a dependency of %s", id)
			}
		}
	}
	if impact := r.ImpactOf("C"); len(impact) != 0 {
		t.Errorf("expected A no longer impacted by C, got %v", impact)
	}
}

func TestDeclareDependencyRequiresBothEndpoints(t *testing.T) {
	r := NewRegistry()
	r.Register("A")

	if r.DeclareDependency("A", "missing") {
		t.Error("expected false when dependency is unregistered")
	}
	if r.DeclareDependency("missing", "A") {
		t.Error("expected false when dependent is unregistered")
	}

	r.Register("B")
	if !r.DeclareDependency("A", "B") {
		t.Error("expected true once both are registered")
	}
}

func TestDependencyOrderSurvivesInterleavedRegistration(t *testing.T) {
	r := NewRegistry()
	r.Register("A")
	r.Register("x2")
	r.DeclareDependency("A", "x2")
	r.Register("x1")
	r.DeclareDependency("A", "x1")
	r.Register("x3")
	r.DeclareDependency("A", "x3")

	want := []string{"x2", "x1", "x3"}
	got := r.Dependencies("A")
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSetStatePublishesUnconditionally(t *testing.T) {
	pub := &capturePublisher{}
	r := NewRegistry(WithPublisher(pub))
	r.Register("api")

	r.SetState("api", StateRunning)
	r.SetState("api", StateRunning) // same-to-same still publishes
	r.SetState("api", StateDegraded)

	events := pub.byReason(event.ReasonStateChanged)
	if len(events) != 3 {
		t.Fatalf("expected 3 state-changed events, got %d", len(events))
	}
}

func TestSetStateUnknownComponent(t *testing.T) {
	r := NewRegistry()
	err := r.SetState("ghost", StateRunning)
	if !apperrors.IsCode(err, apperrors.ErrCodeUnknownComponent) {
		t.Errorf("expected UNKNOWN_COMPONENT, got %v", err)
	}
}

func TestCyclePermittedAndQueryable(t *testing.T) {
	r := NewRegistry()
	r.Register("A")
	r.Register("B")
	if !r.DeclareDependency("A", "B") || !r.DeclareDependency("B", "A") {
		t.Fatal("cyclic declarations must be accepted")
	}
	cycles := r.FindCycles()
	if len(cycles) != 2 {
		t.Errorf("expected both nodes flagged, got %v", cycles)
	}
}

func TestAllReturnsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"z", "a", "m"}
	for _, id := range ids {
		r.Register(id)
	}
	all := r.All()
	for i := range ids {
		if all[i].ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[i], all[i].ID)
		}
	}
}

func TestConcurrentReadsDuringWrites(t *testing.T) {
	r := NewRegistry()
	r.Register("hub")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := string(rune('a'+n)) + "-dep"
				r.Register(id)
				r.DeclareDependency(id, "hub")
				r.Unregister(id)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Graph()
				r.ImpactOf("hub")
				r.Dependents("hub")
			}
		}()
	}
	wg.Wait()
}

func TestStateEnumPredicates(t *testing.T) {
	critical := []State{StateDegraded, StateFailed}
	for _, s := range critical {
		if !s.IsCritical() {
			t.Errorf("%s must be critical", s)
		}
	}
	nonCritical := []State{StateUnknown, StateRunning, StateDown, StateHealthy}
	for _, s := range nonCritical {
		if s.IsCritical() {
			t.Errorf("%s must not be critical", s)
		}
	}

	if !StateHealthy.IsOperational() || !StateRunning.IsOperational() {
		t.Error("healthy and running are both operational")
	}
	if StateHealthy == StateRunning {
		t.Error("healthy and running must stay distinct enum members")
	}
}

func TestParseStateRoundTrip(t *testing.T) {
	states := []State{StateUnknown, StateRunning, StateDegraded, StateDown, StateHealthy, StateFailed}
	for _, s := range states {
		got, err := ParseState(s.String())
		if err != nil {
			t.Fatalf("ParseState(%s): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip of %s yielded %s", s, got)
		}
	}
	if _, err := ParseState("exploded"); err == nil {
		t.Error("expected error for unknown state name")
	}
}
