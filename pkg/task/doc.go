// Package task provides the two deferred-execution primitives used by
// the mailbox core: Tasklet for the urgent, non-blocking transmit
// drain, and Worker for the receive dispatch that is allowed to block
// in subscriber callbacks.
//
// They are deliberately two types rather than one generic task: the
// difference in suspension permission is part of their contract. A
// Tasklet function must not block (bounded microsecond busy-waits are
// acceptable); a Worker function may.
package task
