// Package dashboard exposes the read surface over component health:
// latest status, status history, the dependency graph, alert history, and
// callback registration for alerts and per-component watches.
package dashboard
