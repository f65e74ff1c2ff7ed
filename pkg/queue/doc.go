// Package queue implements the bounded software queue that absorbs
// messages beyond the depth of a channel's hardware FIFO.
//
// A Queue is a fixed-capacity byte ring buffer storing serialized
// fixed-width messages. All operations are non-blocking and safe to
// call from the interrupt dispatch path; a single internal mutex
// serializes producers and consumers across execution contexts.
//
// The receive path additionally uses the queue's full flag for flow
// control: MarkFullIfNoRoom and ConsumeFull make the check and the
// flag transition a single atomic step, so the receive interrupt is
// masked exactly while the queue is saturated and re-enabled exactly
// once per recovery.
package queue
