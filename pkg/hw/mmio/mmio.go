// Package mmio adapts a memory-mapped mailbox register block to the
// hw interfaces. The block is mapped through a UIO device node, with
// interrupts delivered by blocking reads on the same node.
package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
)

// Layout describes one mailbox instance within the register block.
// Offsets are in bytes from the start of the mapping. The interrupt
// status register is expected to be write-one-to-clear.
type Layout struct {
	// Message is the data register: reads pop the receive FIFO,
	// writes push the transmit FIFO.
	Message uintptr

	// FIFOStatus reports transmit FIFO space; bit 0 set means full.
	FIFOStatus uintptr

	// MsgStatus reports the number of unread messages in the receive
	// FIFO.
	MsgStatus uintptr

	// IRQStatus and IRQEnable are the interrupt status and mask
	// registers shared by both directions.
	IRQStatus uintptr
	IRQEnable uintptr

	// RxBit and TxBit select each direction's bit within the
	// interrupt registers.
	RxBit uint32
	TxBit uint32

	// Variant tags the FIFO behavior policy of this instance.
	Variant hw.FIFOVariant
}

func (l Layout) bit(irq hw.IRQ) uint32 {
	if irq == hw.IRQTx {
		return l.TxBit
	}
	return l.RxBit
}

// Device is one mapped mailbox instance.
type Device struct {
	mem    []byte
	file   *os.File
	layout Layout

	savedEnable uint32
}

// Open maps size bytes of the device node at path and binds the given
// register layout to it.
func Open(path string, size int, layout Layout) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0o660)
	if err != nil {
		return nil, err
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return &Device{mem: mem, file: f, layout: layout}, nil
}

// NewFromBytes binds the layout to an existing mapping, for register
// blocks obtained by other means.
func NewFromBytes(mem []byte, layout Layout) *Device {
	return &Device{mem: mem, layout: layout}
}

// Close unmaps the register block.
func (d *Device) Close() error {
	if d.file == nil {
		return nil
	}
	unix.Munmap(d.mem)
	d.mem = nil
	return d.file.Close()
}

func (d *Device) rd(offs uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&d.mem[offs])))
}

func (d *Device) wr(offs uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&d.mem[offs])), v)
}

// Read pops one word from the receive FIFO.
func (d *Device) Read() hw.Word {
	return hw.Word(d.rd(d.layout.Message))
}

// Write pushes one word into the transmit FIFO.
func (d *Device) Write(w hw.Word) {
	d.wr(d.layout.Message, uint32(w))
}

// Empty reports whether the receive FIFO holds no message.
func (d *Device) Empty() bool {
	return d.rd(d.layout.MsgStatus) == 0
}

// Full reports whether the transmit FIFO has no room.
func (d *Device) Full() bool {
	return d.rd(d.layout.FIFOStatus)&1 != 0
}

// IsIRQ reports whether the direction's interrupt is asserted and
// enabled.
func (d *Device) IsIRQ(irq hw.IRQ) bool {
	bit := d.layout.bit(irq)
	return d.rd(d.layout.IRQStatus)&d.rd(d.layout.IRQEnable)&bit != 0
}

// AckIRQ clears the direction's interrupt status.
func (d *Device) AckIRQ(irq hw.IRQ) {
	d.wr(d.layout.IRQStatus, d.layout.bit(irq))
}

// EnableIRQ sets the direction's bit in the interrupt mask.
func (d *Device) EnableIRQ(irq hw.IRQ) {
	d.wr(d.layout.IRQEnable, d.rd(d.layout.IRQEnable)|d.layout.bit(irq))
}

// DisableIRQ clears the direction's bit in the interrupt mask.
func (d *Device) DisableIRQ(irq hw.IRQ) {
	d.wr(d.layout.IRQEnable, d.rd(d.layout.IRQEnable)&^d.layout.bit(irq))
}

// Variant reports the FIFO behavior policy from the layout.
func (d *Device) Variant() hw.FIFOVariant {
	return d.layout.Variant
}

// Startup implements hw.Initializer. Clock and reset management
// belongs to the platform; the register block needs no bring-up
// beyond the mapping.
func (d *Device) Startup() error { return nil }

// Shutdown implements hw.Initializer.
func (d *Device) Shutdown() {}

// SaveContext captures the interrupt mask ahead of a power
// transition that loses register state.
func (d *Device) SaveContext() error {
	d.savedEnable = d.rd(d.layout.IRQEnable)
	return nil
}

// RestoreContext reinstates the saved interrupt mask.
func (d *Device) RestoreContext() error {
	d.wr(d.layout.IRQEnable, d.savedEnable)
	return nil
}

var (
	_ hw.Ops           = (*Device)(nil)
	_ hw.Initializer   = (*Device)(nil)
	_ hw.ContextKeeper = (*Device)(nil)
)
