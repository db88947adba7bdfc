// Package errors defines the error taxonomy of the monitoring core:
// structural errors (duplicate component, unknown component) that callers must
// handle, and operational errors (provider failure, recovery failure) that are
// recovered locally and recorded.
package errors
