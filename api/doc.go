// Package api serves the read-only monitoring surface over HTTP: component
// statuses, history, the dependency graph, alert history, integration
// scores, integration points, and the Prometheus scrape endpoint.
package api
