// Package sim provides an in-memory mailbox peripheral: two endpoints
// linked by a pair of fixed-depth word FIFOs, with per-direction
// interrupt status and masking and a software interrupt line whose
// dispatch goroutine plays the role of the interrupt context.
//
// It backs the package tests, the integration test and cmd/mbox-shell.
package sim
