// Package integration traces transactions against external integrations,
// detects failure patterns over recent history, computes health scores, and
// tracks the named integration points a deployment exposes.
package integration
