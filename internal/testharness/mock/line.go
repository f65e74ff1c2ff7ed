package mock

import (
	"sync"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
)

// Line is a synchronous interrupt line. Trigger runs every registered
// handler on the caller's goroutine before returning, which keeps
// interrupt-driven tests deterministic.
type Line struct {
	mu       sync.Mutex
	handlers []*lineHandler
}

type lineHandler struct {
	line *Line
	fn   func()
}

// NewLine creates an idle line.
func NewLine() *Line {
	return &Line{}
}

// Request implements hw.IRQLine.
func (l *Line) Request(name string, handler func()) (hw.IRQRegistration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := &lineHandler{line: l, fn: handler}
	l.handlers = append(l.handlers, h)
	return h, nil
}

// Trigger runs every registered handler once, in registration order.
func (l *Line) Trigger() {
	l.mu.Lock()
	handlers := make([]*lineHandler, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}

// Handlers reports how many handlers are registered.
func (l *Line) Handlers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handlers)
}

// Free implements hw.IRQRegistration.
func (h *lineHandler) Free() {
	l := h.line
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.handlers {
		if cur == h {
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			return
		}
	}
}

var _ hw.IRQLine = (*Line)(nil)
