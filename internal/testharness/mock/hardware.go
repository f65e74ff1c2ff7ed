// Package mock provides scripted hardware implementations for testing.
package mock

import (
	"sync"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
)

// Hardware is a scriptable in-memory mailbox adapter. Tests preload
// its receive FIFO, inspect what was written, force error returns on
// the optional capabilities, and override the space report.
type Hardware struct {
	// FIFOVariant is reported by Variant.
	FIFOVariant hw.FIFOVariant

	// Depth is the transmit FIFO depth in messages. Zero means
	// unbounded.
	Depth int

	// StartupErr, SaveErr and RestoreErr are returned by the
	// corresponding capability when non-nil.
	StartupErr error
	SaveErr    error
	RestoreErr error

	mu        sync.Mutex
	rxWords   []hw.Word
	written   []hw.Word
	status    map[hw.IRQ]bool
	mask      map[hw.IRQ]bool
	forceFull *bool

	startups  int
	shutdowns int
	saves     int
	restores  int
}

// NewHardware creates a mock adapter with the given transmit depth.
func NewHardware(depth int) *Hardware {
	return &Hardware{
		Depth:  depth,
		status: make(map[hw.IRQ]bool),
		mask:   make(map[hw.IRQ]bool),
	}
}

// Push preloads words into the receive FIFO and asserts the receive
// interrupt status.
func (h *Hardware) Push(words ...hw.Word) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rxWords = append(h.rxWords, words...)
	h.status[hw.IRQRx] = true
}

// Written returns a copy of every word written so far.
func (h *Hardware) Written() []hw.Word {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]hw.Word, len(h.written))
	copy(out, h.written)
	return out
}

// DrainWritten clears and returns the written words, freeing transmit
// space.
func (h *Hardware) DrainWritten() []hw.Word {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.written
	h.written = nil
	return out
}

// AssertIRQ latches an interrupt status, as raised hardware would.
func (h *Hardware) AssertIRQ(irq hw.IRQ) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status[irq] = true
}

// Masked reports whether the direction's interrupt is currently
// masked.
func (h *Hardware) Masked(irq hw.IRQ) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.mask[irq]
}

// Counters returns the lifecycle call counts in startup, shutdown,
// save, restore order.
func (h *Hardware) Counters() (int, int, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.startups, h.shutdowns, h.saves, h.restores
}

// Read pops one word from the receive FIFO.
func (h *Hardware) Read() hw.Word {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.rxWords) == 0 {
		return 0
	}
	w := h.rxWords[0]
	h.rxWords = h.rxWords[1:]
	return w
}

// Write appends one word to the written record.
func (h *Hardware) Write(w hw.Word) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.written = append(h.written, w)
}

// Empty reports whether the receive FIFO holds no word.
func (h *Hardware) Empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rxWords) == 0
}

// SetForceFull overrides the transmit space report until
// ClearForceFull.
func (h *Hardware) SetForceFull(full bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forceFull = &full
}

// ClearForceFull reverts Full to the depth-based report.
func (h *Hardware) ClearForceFull() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forceFull = nil
}

// Full reports the transmit space, honoring any SetForceFull
// override.
func (h *Hardware) Full() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.forceFull != nil {
		return *h.forceFull
	}
	return h.Depth > 0 && len(h.written) >= h.Depth
}

// IsIRQ reports whether the direction's interrupt is asserted and
// unmasked.
func (h *Hardware) IsIRQ(irq hw.IRQ) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mask[irq] && h.status[irq]
}

// AckIRQ clears the interrupt status. The receive status reasserts
// while words remain unread.
func (h *Hardware) AckIRQ(irq hw.IRQ) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status[irq] = irq == hw.IRQRx && len(h.rxWords) > 0
}

// EnableIRQ unmasks the direction.
func (h *Hardware) EnableIRQ(irq hw.IRQ) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mask[irq] = true
}

// DisableIRQ masks the direction.
func (h *Hardware) DisableIRQ(irq hw.IRQ) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mask[irq] = false
}

// Variant reports the scripted FIFO behavior policy.
func (h *Hardware) Variant() hw.FIFOVariant {
	return h.FIFOVariant
}

// Startup implements hw.Initializer.
func (h *Hardware) Startup() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.StartupErr != nil {
		return h.StartupErr
	}
	h.startups++
	return nil
}

// Shutdown implements hw.Initializer.
func (h *Hardware) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdowns++
}

// SaveContext implements hw.ContextKeeper.
func (h *Hardware) SaveContext() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.SaveErr != nil {
		return h.SaveErr
	}
	h.saves++
	return nil
}

// RestoreContext implements hw.ContextKeeper.
func (h *Hardware) RestoreContext() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.RestoreErr != nil {
		return h.RestoreErr
	}
	h.restores++
	return nil
}

var (
	_ hw.Ops           = (*Hardware)(nil)
	_ hw.Initializer   = (*Hardware)(nil)
	_ hw.ContextKeeper = (*Hardware)(nil)
)

// Bare strips the optional capabilities from an adapter, exposing the
// hw.Ops surface alone. Tests use it to exercise the paths that probe
// for hw.Initializer and hw.ContextKeeper and find nothing.
type Bare struct {
	hw.Ops
}

// NewBare wraps ops so only the hw.Ops surface is visible.
func NewBare(ops hw.Ops) Bare { return Bare{Ops: ops} }
