// Package bus implements the in-process publish/subscribe dispatcher.
//
// Dispatch is synchronous by default: Publish walks subscribers in
// registration order and runs each matching callback on the publisher's
// goroutine, isolating per-callback failures. WithAsyncDispatch switches to
// one ordered queue and worker per subscriber so a slow subscriber cannot
// block publication to the others.
package bus
