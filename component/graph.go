package component

import "sync"

// DependencyGraph is a directed graph of named dependency edges. Edge lists
// are kept in insertion order as a hard invariant: Dependencies, Dependents,
// and Snapshot reproduce the exact declaration order, never a sorted or set
// order. Cycles are structurally permitted; traversal guards with a visited
// set instead of assuming acyclicity.
type DependencyGraph struct {
	mu sync.RWMutex
	// dependencies maps dependent -> direct dependencies, declaration order.
	dependencies map[string][]string
	// dependents maps dependency -> direct dependents, declaration order.
	dependents map[string][]string
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
	}
}

// AddEdge records that dependent requires dependency.
func (g *DependencyGraph) AddEdge(dependent, dependency string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dependencies[dependent] = append(g.dependencies[dependent], dependency)
	g.dependents[dependency] = append(g.dependents[dependency], dependent)
}

// Dependencies returns the direct dependencies of id in declaration order.
func (g *DependencyGraph) Dependencies(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyList(g.dependencies[id])
}

// Dependents returns the nodes that declared a dependency on id, in the
// order those declarations were made.
func (g *DependencyGraph) Dependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyList(g.dependents[id])
}

// Snapshot returns the full mapping of dependent -> ordered direct
// dependencies. The result is a deep copy; concurrent writes never yield a
// partially constructed list to a reader.
func (g *DependencyGraph) Snapshot() map[string][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string][]string, len(g.dependencies))
	for id, deps := range g.dependencies {
		out[id] = copyList(deps)
	}
	return out
}

// RemoveNode deletes every edge that references id, in either direction.
// Remaining edge lists keep their relative order.
func (g *DependencyGraph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, dep := range g.dependencies[id] {
		g.dependents[dep] = removeAll(g.dependents[dep], id)
		if len(g.dependents[dep]) == 0 {
			delete(g.dependents, dep)
		}
	}
	delete(g.dependencies, id)

	for _, dependent := range g.dependents[id] {
		g.dependencies[dependent] = removeAll(g.dependencies[dependent], id)
		if len(g.dependencies[dependent]) == 0 {
			delete(g.dependencies, dependent)
		}
	}
	delete(g.dependents, id)
}

// ImpactOf computes the transitive closure of dependents: every node that
// directly or indirectly depends on id. Order is first-discovery (BFS over
// reverse edges); a visited set guarantees termination on cyclic graphs and
// that no node is reported twice even when multiple paths reach it. The
// starting node itself is excluded.
func (g *DependencyGraph) ImpactOf(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{id: true}
	var impact []string
	queue := []string{id}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range g.dependents[current] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			impact = append(impact, dependent)
			queue = append(queue, dependent)
		}
	}
	return impact
}

// FindCycles reports the nodes that participate in at least one dependency
// cycle. It is a diagnostic only: cyclic declarations are accepted, this
// merely surfaces them for operators. Implementation is Kahn's algorithm;
// whatever cannot be peeled off is cyclic.
func (g *DependencyGraph) FindCycles() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inDegree := make(map[string]int)
	nodes := make(map[string]bool)
	for dependent, deps := range g.dependencies {
		nodes[dependent] = true
		for _, dep := range deps {
			nodes[dep] = true
			inDegree[dep]++
		}
	}

	var queue []string
	for n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	removed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		removed++
		for _, dep := range g.dependencies[current] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if removed == len(nodes) {
		return nil
	}
	var cyclic []string
	for n := range nodes {
		if inDegree[n] > 0 {
			cyclic = append(cyclic, n)
		}
	}
	return cyclic
}

func copyList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func removeAll(in []string, id string) []string {
	out := in[:0]
	for _, v := range in {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
