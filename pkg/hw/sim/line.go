package sim

import (
	"sync"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/task"
)

// Line is a software interrupt line. Handlers registered through
// Request run on the line's dispatch goroutine, in registration
// order, each time the line is raised. Multiple channels may share
// one line; each handler is expected to test its own hardware with
// IsIRQ.
type Line struct {
	mu       sync.Mutex
	handlers []*lineHandler

	// run is held while handlers execute, so Free can wait for an
	// in-flight invocation.
	run     sync.Mutex
	tasklet *task.Tasklet
}

type lineHandler struct {
	name string
	fn   func()
	line *Line
}

// NewLine creates a line with a running dispatch goroutine.
func NewLine() *Line {
	l := &Line{}
	l.tasklet = task.NewTasklet(l.dispatch)
	return l
}

// Request registers a handler on the line.
func (l *Line) Request(name string, handler func()) (hw.IRQRegistration, error) {
	h := &lineHandler{name: name, fn: handler, line: l}
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
	return h, nil
}

// Raise schedules one dispatch pass over all handlers. Raises
// coalesce while a pass is pending.
func (l *Line) Raise() {
	l.tasklet.Schedule()
}

// Close stops the dispatch goroutine.
func (l *Line) Close() {
	l.tasklet.Kill()
}

func (l *Line) dispatch() {
	l.run.Lock()
	defer l.run.Unlock()

	l.mu.Lock()
	handlers := make([]*lineHandler, len(l.handlers))
	copy(handlers, l.handlers)
	l.mu.Unlock()

	for _, h := range handlers {
		h.fn()
	}
}

// Free removes the handler and waits for any in-flight dispatch pass
// to finish.
func (h *lineHandler) Free() {
	l := h.line
	l.mu.Lock()
	for i, cand := range l.handlers {
		if cand == h {
			l.handlers = append(l.handlers[:i], l.handlers[i+1:]...)
			break
		}
	}
	l.mu.Unlock()

	// Taking run blocks until the current dispatch pass, if any,
	// has returned.
	l.run.Lock()
	defer l.run.Unlock()
}
