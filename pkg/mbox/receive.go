package mbox

import (
	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/log"
)

// receiveInterrupt drains the hardware FIFO into the software queue.
// When the queue cannot take another message it masks the receive
// interrupt and stops without acknowledging the source, shifting
// backpressure onto the hardware FIFO; dispatch re-enables the
// interrupt once it frees room.
func (c *Channel) receiveInterrupt() {
	overflow := false
	for !c.hw.Empty() {
		if c.rxq.MarkFullIfNoRoom() {
			c.hw.DisableIRQ(hw.IRQRx)
			c.logFlow(true)
			overflow = true
			break
		}

		var rec [MessageSize]byte
		encodeMessage(rec[:], c.hw.Read())
		if err := c.rxq.TryEnqueue(rec[:]); err != nil {
			// Room was just reserved; only corruption gets here.
			c.logError("receive enqueue", err)
			break
		}

		// Edge-triggered single-message FIFOs deliver one word per
		// interrupt.
		if c.hw.Variant() == hw.VariantSingleMessage {
			break
		}
	}

	if !overflow {
		// No more messages in the fifo. Clear the interrupt source.
		c.hw.AckIRQ(hw.IRQRx)
	}
	c.rxWorker.Schedule()
}

// dispatchReceive runs on the receive worker. It fans each queued
// message out to the subscriber chain in arrival order and releases
// backpressure as soon as a dequeue frees room.
func (c *Channel) dispatchReceive() {
	for {
		var rec [MessageSize]byte
		if err := c.rxq.TryDequeue(rec[:]); err != nil {
			return
		}
		msg := decodeMessage(rec[:])

		n := c.subscribers.notify(MessageSize, msg)
		c.logMessage(log.DirectionIn, msg, false, n)

		if c.rxq.ConsumeFull() {
			c.hw.EnableIRQ(hw.IRQRx)
			c.logFlow(false)
		}
	}
}
