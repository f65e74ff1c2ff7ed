package sim

import (
	"sync"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
)

// DefaultDepth is the hardware FIFO depth in messages, matching the
// small register-backed FIFOs this simulates.
const DefaultDepth = 4

// Config configures a simulated endpoint pair.
type Config struct {
	// Depth is the FIFO depth in messages for both directions.
	// Defaults to DefaultDepth.
	Depth int

	// VariantA and VariantB select the FIFO behavior policy each
	// endpoint reports.
	VariantA hw.FIFOVariant
	VariantB hw.FIFOVariant
}

// Pair is two linked mailbox endpoints. Words written on one side
// appear in the other side's receive FIFO and raise its receive
// interrupt; reads free transmit space on the writer's side and raise
// its transmit-ready interrupt.
type Pair struct {
	mu sync.Mutex

	aToB *fifo
	bToA *fifo

	A *Endpoint
	B *Endpoint
}

// fifo is one direction's word FIFO.
type fifo struct {
	words []hw.Word
	depth int
}

func (f *fifo) empty() bool { return len(f.words) == 0 }
func (f *fifo) full() bool  { return len(f.words) >= f.depth }

// NewPair creates a linked endpoint pair.
func NewPair(cfg Config) *Pair {
	depth := cfg.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	p := &Pair{
		aToB: &fifo{depth: depth},
		bToA: &fifo{depth: depth},
	}
	p.A = &Endpoint{pair: p, name: "a", tx: p.aToB, rx: p.bToA, variant: cfg.VariantA, line: NewLine()}
	p.B = &Endpoint{pair: p, name: "b", tx: p.bToA, rx: p.aToB, variant: cfg.VariantB, line: NewLine()}
	p.A.peer = p.B
	p.B.peer = p.A
	return p
}

// Close stops both endpoints' interrupt dispatch goroutines.
func (p *Pair) Close() {
	p.A.line.Close()
	p.B.line.Close()
}

// Endpoint is one side of a Pair. It implements hw.Ops, hw.Initializer
// and hw.ContextKeeper.
type Endpoint struct {
	pair    *Pair
	peer    *Endpoint
	name    string
	tx, rx  *fifo
	variant hw.FIFOVariant
	line    *Line

	// Guarded by pair.mu.
	status map[hw.IRQ]bool
	mask   map[hw.IRQ]bool
	saved  map[hw.IRQ]bool

	// Counters for tests and diagnostics, guarded by pair.mu.
	Startups  int
	Shutdowns int
	Saves     int
	Restores  int
	Dropped   int // words written while the FIFO was full
	powered   bool
}

// Line returns the endpoint's interrupt line.
func (e *Endpoint) Line() *Line { return e.line }

// Name returns the endpoint name ("a" or "b").
func (e *Endpoint) Name() string { return e.name }

func (e *Endpoint) ensureMaps() {
	if e.status == nil {
		e.status = make(map[hw.IRQ]bool)
		e.mask = make(map[hw.IRQ]bool)
	}
}

// condition reports whether the hardware condition behind the given
// interrupt currently holds.
func (e *Endpoint) condition(irq hw.IRQ) bool {
	switch irq {
	case hw.IRQTx:
		return !e.tx.full()
	case hw.IRQRx:
		return !e.rx.empty()
	}
	return false
}

func (e *Endpoint) assert(irq hw.IRQ) {
	e.ensureMaps()
	e.status[irq] = true
	if e.mask[irq] {
		e.line.Raise()
	}
}

// Read pops one word from the receive FIFO. Reading an empty FIFO
// returns 0, as undefined behavior goes.
func (e *Endpoint) Read() hw.Word {
	p := e.pair
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.rx.empty() {
		return 0
	}
	w := e.rx.words[0]
	e.rx.words = e.rx.words[1:]

	// Space freed on the peer's transmit side.
	e.peer.assert(hw.IRQTx)
	return w
}

// Write pushes one word into the transmit FIFO and raises the peer's
// receive interrupt. Words written while full are dropped and counted.
func (e *Endpoint) Write(w hw.Word) {
	p := e.pair
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.tx.full() {
		e.Dropped++
		return
	}
	e.tx.words = append(e.tx.words, w)
	e.peer.assert(hw.IRQRx)
}

// Empty reports whether the receive FIFO holds no word.
func (e *Endpoint) Empty() bool {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	return e.rx.empty()
}

// Full reports whether the transmit FIFO has no room.
func (e *Endpoint) Full() bool {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	return e.tx.full()
}

// IsIRQ reports whether the direction's interrupt is asserted and
// unmasked.
func (e *Endpoint) IsIRQ(irq hw.IRQ) bool {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.ensureMaps()
	return e.mask[irq] && e.status[irq]
}

// AckIRQ clears the interrupt source. The status reasserts
// immediately when the underlying condition still holds, like a
// level-derived source.
func (e *Endpoint) AckIRQ(irq hw.IRQ) {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.ensureMaps()
	e.status[irq] = e.condition(irq)
	if e.status[irq] && e.mask[irq] {
		e.line.Raise()
	}
}

// EnableIRQ unmasks the direction and latches the current condition,
// so enabling with work already pending fires immediately.
func (e *Endpoint) EnableIRQ(irq hw.IRQ) {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.ensureMaps()
	e.mask[irq] = true
	if e.condition(irq) {
		e.status[irq] = true
	}
	if e.status[irq] {
		e.line.Raise()
	}
}

// DisableIRQ masks the direction. Status stays latched.
func (e *Endpoint) DisableIRQ(irq hw.IRQ) {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.ensureMaps()
	e.mask[irq] = false
}

// Variant tags the FIFO behavior policy.
func (e *Endpoint) Variant() hw.FIFOVariant {
	return e.variant
}

// Startup implements hw.Initializer.
func (e *Endpoint) Startup() error {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.Startups++
	e.powered = true
	return nil
}

// Shutdown implements hw.Initializer.
func (e *Endpoint) Shutdown() {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.Shutdowns++
	e.powered = false
}

// SaveContext implements hw.ContextKeeper by capturing the interrupt
// mask and status.
func (e *Endpoint) SaveContext() error {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.ensureMaps()
	e.Saves++
	e.saved = map[hw.IRQ]bool{
		hw.IRQTx: e.mask[hw.IRQTx],
		hw.IRQRx: e.mask[hw.IRQRx],
	}
	return nil
}

// RestoreContext implements hw.ContextKeeper.
func (e *Endpoint) RestoreContext() error {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	e.ensureMaps()
	e.Restores++
	if e.saved != nil {
		for irq, enabled := range e.saved {
			e.mask[irq] = enabled
		}
	}
	return nil
}

// Pending reports how many words wait unread in the receive FIFO.
func (e *Endpoint) Pending() int {
	e.pair.mu.Lock()
	defer e.pair.mu.Unlock()
	return len(e.rx.words)
}

// Compile-time capability checks.
var (
	_ hw.Ops           = (*Endpoint)(nil)
	_ hw.Initializer   = (*Endpoint)(nil)
	_ hw.ContextKeeper = (*Endpoint)(nil)
	_ hw.IRQLine       = (*Line)(nil)
)
