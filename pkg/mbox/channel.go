package mbox

import (
	"sync"
	"time"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/log"
	"github.com/mbox-ipc/mbox-go/pkg/queue"
	"github.com/mbox-ipc/mbox-go/pkg/task"
)

// Channel is one named mailbox endpoint between cores. Channels are
// built with NewChannel, bound to a device through Registry.Register,
// and activated with Registry.Get.
type Channel struct {
	name string
	id   string // UUID assigned at registration
	hw   hw.Ops
	line hw.IRQLine

	dev      *Device
	logger   log.Logger
	queueCap int

	// useCount is guarded by dev.mu.
	useCount int
	irqReg   hw.IRQRegistration

	// txLock serializes the transmit fast path, the deferred drain
	// and teardown against each other; it is the sole gate to
	// hardware FIFO writes. Holders never suspend beyond the bounded
	// microsecond poll.
	txLock sync.Mutex
	txq    *queue.Queue

	rxq       *queue.Queue
	txTasklet *task.Tasklet
	rxWorker  *task.Worker

	subscribers notifierChain
}

// NewChannel creates a channel driving ops, interrupting on line.
// The channel is inert until registered and activated.
func NewChannel(name string, ops hw.Ops, line hw.IRQLine) *Channel {
	return &Channel{
		name:   name,
		hw:     ops,
		line:   line,
		logger: log.NoopLogger{},
	}
}

// Name returns the channel's lookup name.
func (c *Channel) Name() string { return c.name }

// ID returns the channel's instance UUID, assigned at registration.
func (c *Channel) ID() string { return c.id }

// Device returns the device the channel is registered on, or nil.
func (c *Channel) Device() *Device { return c.dev }

// UseCount returns the number of active users.
func (c *Channel) UseCount() int {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	return c.useCount
}

// Subscribers returns the number of registered subscribers.
func (c *Channel) Subscribers() int {
	return c.subscribers.count()
}

// interrupt is the hardware interrupt handler. It runs on the IRQ
// line's dispatch goroutine, possibly for interrupts belonging to
// other channels sharing the line, and must never block.
func (c *Channel) interrupt() {
	if c.hw.IsIRQ(hw.IRQTx) {
		c.transmitInterrupt()
	}
	if c.hw.IsIRQ(hw.IRQRx) {
		c.receiveInterrupt()
	}
}

func (c *Channel) event(dir log.Direction, cat log.Category) log.Event {
	return log.Event{
		Timestamp: time.Now(),
		ChannelID: c.id,
		Channel:   c.name,
		Direction: dir,
		Category:  cat,
	}
}

func (c *Channel) logMessage(dir log.Direction, msg Message, fastPath bool, subscribers int) {
	ev := c.event(dir, log.CategoryMessage)
	ev.Message = &log.MessageEvent{
		Word:        uint32(msg),
		Length:      MessageSize,
		FastPath:    fastPath,
		Subscribers: subscribers,
	}
	c.logger.Log(ev)
}

func (c *Channel) logLifecycle(action log.LifecycleAction, useCount, configured int) {
	ev := c.event(log.DirectionNone, log.CategoryLifecycle)
	ev.Lifecycle = &log.LifecycleEvent{
		Action:     action,
		UseCount:   useCount,
		Configured: configured,
	}
	c.logger.Log(ev)
}

func (c *Channel) logFlow(throttled bool) {
	ev := c.event(log.DirectionNone, log.CategoryFlow)
	ev.Flow = &log.FlowEvent{Throttled: throttled}
	c.logger.Log(ev)
}

func (c *Channel) logPower(action log.PowerAction, err error) {
	ev := c.event(log.DirectionNone, log.CategoryPower)
	pe := &log.PowerEvent{Action: action}
	if err != nil {
		pe.Err = err.Error()
	}
	ev.Power = pe
	c.logger.Log(ev)
}

func (c *Channel) logError(op string, err error) {
	ev := c.event(log.DirectionNone, log.CategoryError)
	ev.Error = &log.ErrorEventData{Op: op, Message: err.Error()}
	c.logger.Log(ev)
}
