// Package app is the composition root: it builds the monitoring core from
// configuration and runs the collection loop, the event dispatcher, and the
// HTTP read surface with graceful shutdown.
package app
