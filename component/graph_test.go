package component

import (
	"testing"
)

func TestDependenciesPreserveInsertionOrder(t *testing.T) {
	g := NewDependencyGraph()
	deps := []string{"x3", "x1", "x2", "a0"}
	for _, d := range deps {
		g.AddEdge("A", d)
	}

	got := g.Dependencies("A")
	if len(got) != len(deps) {
		t.Fatalf("expected %d dependencies, got %d", len(deps), len(got))
	}
	for i := range deps {
		if got[i] != deps[i] {
			t.Errorf("position %d: expected %s, got %s", i, deps[i], got[i])
		}
	}

	snapshot := g.Snapshot()
	for i := range deps {
		if snapshot["A"][i] != deps[i] {
			t.Errorf("snapshot position %d: expected %s, got %s", i, deps[i], snapshot["A"][i])
		}
	}
}

func TestDependentsPreserveDeclarationOrder(t *testing.T) {
	g := NewDependencyGraph()
	g.AddEdge("ui", "db")
	g.AddEdge("api", "db")
	g.AddEdge("worker", "db")

	got := g.Dependents("db")
	want := []string{"ui", "api", "worker"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestImpactTransitivity(t *testing.T) {
	g := NewDependencyGraph()
	// A depends on B, B depends on C, plus a direct A -> C shortcut.
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("A", "C")

	impact := g.ImpactOf("C")

	seen := map[string]int{}
	for _, id := range impact {
		seen[id]++
	}
	if seen["A"] != 1 {
		t.Errorf("expected A exactly once, got %d times in %v", seen["A"], impact)
	}
	if seen["B"] != 1 {
		t.Errorf("expected B exactly once, got %d times in %v", seen["B"], impact)
	}
	if len(impact) != 2 {
		t.Errorf("expected impact {A, B}, got %v", impact)
	}
}

func TestImpactFirstDiscoveryOrder(t *testing.T) {
	g := NewDependencyGraph()
	g.AddEdge("direct1", "core")
	g.AddEdge("direct2", "core")
	g.AddEdge("indirect", "direct1")

	impact := g.ImpactOf("core")
	want := []string{"direct1", "direct2", "indirect"}
	if len(impact) != len(want) {
		t.Fatalf("expected %v, got %v", want, impact)
	}
	for i := range want {
		if impact[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], impact[i])
		}
	}
}

func TestImpactTerminatesOnCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")

	impact := g.ImpactOf("A")

	seen := map[string]bool{}
	for _, id := range impact {
		if seen[id] {
			t.Fatalf("node %s reported twice in %v", id, impact)
		}
		seen[id] = true
	}
	if !seen["B"] || !seen["C"] {
		t.Errorf("expected B and C in impact of A, got %v", impact)
	}
}

func TestFindCycles(t *testing.T) {
	g := NewDependencyGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	if cycles := g.FindCycles(); cycles != nil {
		t.Errorf("acyclic graph reported cycles: %v", cycles)
	}

	g.AddEdge("C", "A")
	cycles := g.FindCycles()
	if len(cycles) != 3 {
		t.Errorf("expected all three nodes flagged cyclic, got %v", cycles)
	}
}

func TestRemoveNodeDropsAllTouchingEdges(t *testing.T) {
	g := NewDependencyGraph()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")

	g.RemoveNode("B")

	snapshot := g.Snapshot()
	if _, ok := snapshot["B"]; ok {
		t.Error("B still present as a key after removal")
	}
	for id, deps := range snapshot {
		for _, d := range deps {
			if d == "B" {
				t.Errorf("B still present as a dependency of %s", id)
			}
		}
	}
	if impact := g.ImpactOf("C"); len(impact) != 0 {
		t.Errorf("expected no remaining impact on C, got %v", impact)
	}
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	g := NewDependencyGraph()
	g.AddEdge("A", "B")

	deps := g.Dependencies("A")
	deps[0] = "mutated"

	if g.Dependencies("A")[0] != "B" {
		t.Error("caller mutation leaked into the graph")
	}
}
