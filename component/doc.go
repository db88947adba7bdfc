// Package component provides the component registry and its dependency graph.
//
// Components are identified by globally unique string ids. Dependency edges
// are directed (dependent requires dependency) and kept strictly in
// declaration order, which downstream analytics and tests rely on. Impact
// analysis walks reverse edges breadth-first with a visited set, so cyclic
// declarations are tolerated and reported once each.
package component
