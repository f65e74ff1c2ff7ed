package mbox

import "context"

// activeLatencyConstraintUS is the wakeup latency constraint, in
// microseconds, requested while a mailbox device is active so that
// interrupt handling is not delayed by deep idle states.
const activeLatencyConstraintUS = 10

// PowerRuntime is the runtime power-management collaborator of a
// device. The core only needs "make the device active" and "release
// that request"; the runtime tracks its own reference counts.
type PowerRuntime interface {
	// Get requests the device be put into an active power state. It
	// may block while the transition completes; ctx bounds the wait.
	Get(ctx context.Context) error

	// Put releases one active-state request.
	Put()
}

// LatencyConstrainer is an optional PowerRuntime capability for
// platforms with a wakeup latency constraint facility.
type LatencyConstrainer interface {
	// SetLatencyConstraint requests the platform keep wakeup latency
	// at or below us microseconds.
	SetLatencyConstraint(us int)

	// ClearLatencyConstraint removes the request.
	ClearLatencyConstraint()
}

// NopPowerRuntime satisfies PowerRuntime for devices without runtime
// power management.
type NopPowerRuntime struct{}

// Get reports the device active immediately.
func (NopPowerRuntime) Get(context.Context) error { return nil }

// Put does nothing.
func (NopPowerRuntime) Put() {}

// Compile-time interface satisfaction check.
var _ PowerRuntime = NopPowerRuntime{}
