// Package mbox implements an interrupt-driven mailbox messaging core
// for exchanging single-word control messages between a host CPU and
// auxiliary processors over small hardware FIFOs.
//
// Each named Channel pairs a hardware FIFO (driven through hw.Ops)
// with two bounded software queues. Transmit takes a fast path
// straight to hardware when possible and otherwise drains through a
// deferred tasklet; receive drains the hardware FIFO from the
// interrupt path into the software queue and dispatches to
// subscribers from a worker that may block. When the receive queue
// saturates, the receive interrupt is masked until dispatch frees
// room, pushing backpressure onto the hardware FIFO.
//
// Channels are reference counted: any number of independent users may
// Get and Put the same channel, and the underlying device is brought
// up exactly once while any channel on it is active.
//
// Typical use:
//
//	reg := mbox.NewRegistry()
//	reg.Register(dev, ch)
//
//	sub := mbox.SubscriberFunc(func(length int, msg mbox.Message) {
//	    // handle msg
//	})
//	c, err := reg.Get(ctx, "dsp", sub)
//	if err != nil { ... }
//	defer reg.Put(c, sub)
//
//	err = c.Send(0x42)
package mbox
