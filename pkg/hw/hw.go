package hw

// Word is one mailbox message as the hardware carries it: a single
// 32-bit machine word. The core does not interpret its contents.
type Word uint32

// WordSize is the width of one mailbox message in bytes.
const WordSize = 4

// IRQ identifies one interrupt direction of a mailbox channel.
type IRQ uint8

const (
	// IRQTx is the transmit-ready interrupt: the hardware FIFO has
	// room for at least one more message.
	IRQTx IRQ = iota

	// IRQRx is the receive interrupt: the hardware FIFO holds at
	// least one unread message.
	IRQRx
)

// String returns the direction name.
func (i IRQ) String() string {
	switch i {
	case IRQTx:
		return "TX"
	case IRQRx:
		return "RX"
	default:
		return "UNKNOWN"
	}
}

// FIFOVariant selects the policy differences between mailbox FIFO
// implementations.
type FIFOVariant uint8

const (
	// VariantLevel is the common level-triggered FIFO: the receive
	// interrupt stays asserted while messages remain, and the full
	// flag reads back reliably.
	VariantLevel FIFOVariant = iota

	// VariantSingleMessage exposes one message per edge-triggered
	// interrupt. The receive path drains exactly one message per
	// interrupt instead of looping.
	VariantSingleMessage

	// VariantWriteBlind never reports "has space" reliably, so the
	// transmit path must assume the worst case: the direct-write fast
	// path is skipped and polling for space fails immediately while
	// the FIFO reads full.
	VariantWriteBlind
)

// String returns the variant name.
func (v FIFOVariant) String() string {
	switch v {
	case VariantLevel:
		return "LEVEL"
	case VariantSingleMessage:
		return "SINGLE_MESSAGE"
	case VariantWriteBlind:
		return "WRITE_BLIND"
	default:
		return "UNKNOWN"
	}
}

// Ops is the mandatory register operation set of one mailbox channel.
// The core owns the hardware exclusively per channel: FIFO data
// operations are serialized by the core's own locking, but interrupt
// mask and ack operations may be invoked concurrently with them, as
// they are on real hardware.
type Ops interface {
	// Read returns one message. Undefined when the FIFO is empty.
	Read() Word

	// Write submits one message. Undefined when the FIFO is full.
	// Write must succeed whenever Full was just observed false under
	// the core's transmit serialization.
	Write(Word)

	// Empty reports whether the receive FIFO holds no message.
	Empty() bool

	// Full reports whether the transmit FIFO has no room.
	Full() bool

	// IsIRQ reports whether the given direction's interrupt is
	// currently asserted. Channels sharing a line use this to
	// disambiguate.
	IsIRQ(IRQ) bool

	// AckIRQ clears the interrupt source for the given direction.
	AckIRQ(IRQ)

	// EnableIRQ unmasks one direction.
	EnableIRQ(IRQ)

	// DisableIRQ masks one direction.
	DisableIRQ(IRQ)

	// Variant tags the FIFO behavior policy.
	Variant() FIFOVariant
}

// Initializer is the optional one-time bring-up capability. A channel
// whose Ops does not implement Initializer cannot be activated at all.
type Initializer interface {
	// Startup performs one-time device bring-up. Called exactly once
	// per device while the first channel activates.
	Startup() error

	// Shutdown tears the device down. Called exactly once while the
	// last channel deactivates.
	Shutdown()
}

// ContextKeeper is the optional register-level power context
// capability. Its absence is reported but does not block power
// transitions.
type ContextKeeper interface {
	// SaveContext captures register state before the device goes
	// inactive.
	SaveContext() error

	// RestoreContext reinstates register state after reactivation.
	RestoreContext() error
}

// IRQLine is a hardware interrupt line. Lines may be shared: every
// registered handler runs on each interrupt, in registration order,
// and uses Ops.IsIRQ to decide whether its channel fired.
type IRQLine interface {
	// Request registers a handler and returns its registration.
	// The name identifies the owner in diagnostics.
	Request(name string, handler func()) (IRQRegistration, error)
}

// IRQRegistration is one handler's claim on an interrupt line.
type IRQRegistration interface {
	// Free removes the handler and waits for any in-flight
	// invocation to return.
	Free()
}
