package mbox

import "errors"

// Mailbox errors.
var (
	// ErrNotFound means the channel name resolves to no registered
	// instance.
	ErrNotFound = errors.New("no channel with that name")

	// ErrNoDevice means hardware bring-up failed during activation.
	// The channel is left inactive; retrying later is safe.
	ErrNoDevice = errors.New("channel could not be activated")

	// ErrResourceExhausted means the software transmit queue has no
	// room. The message was rejected, not queued; callers retry
	// after backoff.
	ErrResourceExhausted = errors.New("transmit queue has no room")

	// ErrInactive means the channel has no active users; Get it
	// before sending.
	ErrInactive = errors.New("channel not active")
)
