package mbox

import (
	"errors"
	"time"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/log"
)

// Bounded poll for hardware FIFO space: up to pollBudget checks with
// a microsecond busy-wait between them, never a wall-clock timeout.
const (
	pollBudget = 1000
	pollDelay  = time.Microsecond
)

var errNoSpace = errors.New("hardware fifo has no space")

// Send submits one message for transmit. The message is either
// written straight to hardware (when the software queue is empty and
// the FIFO has room) or queued for the deferred drain; submission
// order is preserved either way. Send never blocks beyond the bounded
// microsecond poll.
//
// ErrResourceExhausted means the software queue itself had no room;
// the message was rejected and the caller should retry after backoff.
func (c *Channel) Send(msg Message) error {
	c.txLock.Lock()
	defer c.txLock.Unlock()

	if c.txq == nil {
		return ErrInactive
	}
	if c.txq.Avail() < MessageSize {
		return ErrResourceExhausted
	}

	// Fast path: nothing queued ahead and the hardware can take the
	// word now. Skipped for write-blind FIFOs, which cannot be
	// trusted to report space.
	if c.txq.IsEmpty() && c.hw.Variant() != hw.VariantWriteBlind && c.pollForSpace() == nil {
		c.hw.Write(msg)
		c.logMessage(log.DirectionOut, msg, true, 0)
		return nil
	}

	var rec [MessageSize]byte
	encodeMessage(rec[:], msg)
	if err := c.txq.TryEnqueue(rec[:]); err != nil {
		// Room was checked under txLock; this cannot happen without
		// state corruption.
		c.logError("send enqueue", err)
		return ErrResourceExhausted
	}
	c.logMessage(log.DirectionOut, msg, false, 0)
	c.txTasklet.Schedule()
	return nil
}

// pollForSpace waits for the hardware FIFO to have room, bounded by
// pollBudget. Write-blind FIFOs fail immediately while reading full.
// Exhausting the budget is "try later via interrupt", not a failure
// of the send.
func (c *Channel) pollForSpace() error {
	budget := pollBudget
	for c.hw.Full() {
		if c.hw.Variant() == hw.VariantWriteBlind {
			return errNoSpace
		}
		budget--
		if budget == 0 {
			return errNoSpace
		}
		time.Sleep(pollDelay)
	}
	return nil
}

// drainTransmit moves queued messages to hardware. It runs on the
// transmit tasklet. When the hardware stays full past the poll
// budget, it arms the transmit-ready interrupt and stops rather than
// busy-looping.
func (c *Channel) drainTransmit() {
	for {
		c.txLock.Lock()
		if c.txq == nil || c.txq.IsEmpty() {
			c.txLock.Unlock()
			return
		}
		if c.pollForSpace() != nil {
			c.hw.EnableIRQ(hw.IRQTx)
			c.txLock.Unlock()
			return
		}

		var rec [MessageSize]byte
		if err := c.txq.TryDequeue(rec[:]); err != nil {
			// Non-empty was just observed under txLock.
			c.logError("transmit drain", err)
			c.txLock.Unlock()
			return
		}
		c.hw.Write(decodeMessage(rec[:]))
		c.txLock.Unlock()
	}
}

// transmitInterrupt handles the transmit-ready interrupt: hardware
// now has room for at least one message, so hand back to the drain.
func (c *Channel) transmitInterrupt() {
	c.hw.DisableIRQ(hw.IRQTx)
	c.hw.AckIRQ(hw.IRQTx)
	c.txTasklet.Schedule()
}
