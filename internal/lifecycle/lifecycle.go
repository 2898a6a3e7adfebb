// Package lifecycle tracks process-level state shared between the signal
// handler and the health endpoint.
package lifecycle

import "sync/atomic"

var draining atomic.Bool

// BeginDrain marks the process as draining. Called on SIGTERM/SIGINT before
// the HTTP server starts its graceful shutdown; the health endpoint reports
// shutting-down from that point so load balancers stop routing new traffic.
func BeginDrain() {
	draining.Store(true)
}

// Draining reports whether shutdown has begun.
func Draining() bool {
	return draining.Load()
}

// Reset clears the drain flag. Test use only.
func Reset() {
	draining.Store(false)
}
