// Package orchestrator chains the monitoring loop across components:
// diagnose, recover, verify, publish. Its dispatcher bridges the health
// event stream on the bus into the dashboard observation path.
package orchestrator
