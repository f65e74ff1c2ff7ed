// Package hw defines the hardware surface the mailbox core drives:
// the per-channel register operation set (Ops), its optional bring-up
// and context-save capabilities, and the shared interrupt line
// abstraction.
//
// Implementations live below this package: hw/sim provides a linked
// in-memory endpoint pair for tests and tooling, hw/mmio drives real
// memory-mapped mailbox registers.
package hw
