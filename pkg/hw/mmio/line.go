package mmio

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
)

// Line delivers UIO interrupts. Each blocking 4-byte read on the
// device node reports one interrupt; handlers run on the line's
// reader goroutine, and the interrupt is re-enabled after every pass
// by writing back to the node.
type Line struct {
	file *os.File

	mu       sync.Mutex
	handlers []*lineHandler

	run  sync.Mutex
	done chan struct{}
}

type lineHandler struct {
	name string
	fn   func()
	line *Line
}

// OpenLine opens the UIO device node at path and starts the reader.
func OpenLine(path string) (*Line, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0o660)
	if err != nil {
		return nil, err
	}
	l := &Line{file: f, done: make(chan struct{})}
	go l.reader()
	return l, nil
}

// Request implements hw.IRQLine.
func (l *Line) Request(name string, handler func()) (hw.IRQRegistration, error) {
	h := &lineHandler{name: name, fn: handler, line: l}
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
	return h, nil
}

// Close stops interrupt delivery and closes the device node.
func (l *Line) Close() error {
	err := l.file.Close()
	<-l.done
	return err
}

func (l *Line) reader() {
	defer close(l.done)

	var buf [4]byte
	for {
		n, err := l.file.Read(buf[:])
		if err != nil {
			// Node closed, stop delivering.
			return
		}
		if n != 4 {
			continue
		}
		l.dispatch()
		l.reenable()
	}
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

// reenable unmasks the UIO interrupt by writing 1 to the node.
func (l *Line) reenable() {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], 1)
	l.file.Write(buf[:])
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

	l.run.Lock()
	defer l.run.Unlock()
}

var _ hw.IRQLine = (*Line)(nil)
