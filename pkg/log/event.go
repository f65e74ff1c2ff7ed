package log

import (
	"time"
)

// Event represents one mailbox event. CBOR encoding uses integer keys
// for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ChannelID uniquely identifies the channel instance (UUID).
	ChannelID string `cbor:"2,keyasint"`

	// Channel is the channel name.
	Channel string `cbor:"3,keyasint"`

	// Direction indicates message flow for message events.
	Direction Direction `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Type-specific payload (one of these will be set).
	Message   *MessageEvent   `cbor:"6,keyasint,omitempty"`
	Lifecycle *LifecycleEvent `cbor:"7,keyasint,omitempty"`
	Flow      *FlowEvent      `cbor:"8,keyasint,omitempty"`
	Power     *PowerEvent     `cbor:"9,keyasint,omitempty"`
	Error     *ErrorEventData `cbor:"10,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a message received from hardware.
	DirectionIn Direction = 0
	// DirectionOut indicates a message submitted for transmit.
	DirectionOut Direction = 1
	// DirectionNone is used for events without a direction.
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "-"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates message traffic.
	CategoryMessage Category = 0
	// CategoryLifecycle indicates a channel activation or release.
	CategoryLifecycle Category = 1
	// CategoryFlow indicates backpressure engaging or releasing.
	CategoryFlow Category = 2
	// CategoryPower indicates a power-context hook.
	CategoryPower Category = 3
	// CategoryError indicates an internal error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryFlow:
		return "FLOW"
	case CategoryPower:
		return "POWER"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures one message crossing the channel.
type MessageEvent struct {
	// Word is the message value.
	Word uint32 `cbor:"1,keyasint"`

	// Length is the message width in bytes.
	Length int `cbor:"2,keyasint"`

	// FastPath is set on transmit when the word went directly to
	// hardware without touching the software queue.
	FastPath bool `cbor:"3,keyasint,omitempty"`

	// Subscribers is the number of callbacks notified (receive
	// dispatch only).
	Subscribers int `cbor:"4,keyasint,omitempty"`
}

// LifecycleAction identifies a lifecycle transition.
type LifecycleAction uint8

const (
	// LifecycleStartup is a successful channel activation.
	LifecycleStartup LifecycleAction = 0
	// LifecycleShutdown is a channel release.
	LifecycleShutdown LifecycleAction = 1
)

// String returns the action name.
func (a LifecycleAction) String() string {
	switch a {
	case LifecycleStartup:
		return "STARTUP"
	case LifecycleShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// LifecycleEvent captures the counters after a lifecycle transition.
type LifecycleEvent struct {
	// Action is the transition kind.
	Action LifecycleAction `cbor:"1,keyasint"`

	// UseCount is the channel's user count after the transition.
	UseCount int `cbor:"2,keyasint"`

	// Configured is the device-wide bring-up count after the
	// transition.
	Configured int `cbor:"3,keyasint"`
}

// FlowEvent captures receive backpressure transitions.
type FlowEvent struct {
	// Throttled is true when the receive interrupt was just masked
	// because the software queue saturated, false when it was
	// re-enabled.
	Throttled bool `cbor:"1,keyasint"`
}

// PowerAction identifies a power-context hook.
type PowerAction uint8

const (
	// PowerSave is a register context save before suspend.
	PowerSave PowerAction = 0
	// PowerRestore is a register context restore after resume.
	PowerRestore PowerAction = 1
)

// String returns the action name.
func (a PowerAction) String() string {
	switch a {
	case PowerSave:
		return "SAVE"
	case PowerRestore:
		return "RESTORE"
	default:
		return "UNKNOWN"
	}
}

// PowerEvent captures a power-context hook invocation.
type PowerEvent struct {
	// Action is the hook kind.
	Action PowerAction `cbor:"1,keyasint"`

	// Err holds the failure message when the hook failed or the
	// adapter lacks the capability.
	Err string `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures an internal error with no caller to report
// to.
type ErrorEventData struct {
	// Op names the operation that failed.
	Op string `cbor:"1,keyasint"`

	// Message is the failure description.
	Message string `cbor:"2,keyasint"`
}
