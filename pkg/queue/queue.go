package queue

import (
	"errors"
	"sync"
)

// Queue errors.
var (
	ErrFull  = errors.New("queue has no room for a message")
	ErrEmpty = errors.New("queue holds no complete message")
)

// Queue is a fixed-capacity byte ring buffer holding serialized
// messages of a single fixed width. The zero value is not usable;
// create queues with New.
type Queue struct {
	mu    sync.Mutex
	buf   []byte
	head  int // next write position
	tail  int // next read position
	count int // stored bytes, always a multiple of width
	width int
	full  bool // receive-side flow control flag
}

// New creates a queue storing width-byte messages. The capacity is
// normalized with NormalizeCapacity, so the queue always holds at
// least one message.
func New(capacity, width int) *Queue {
	return &Queue{
		buf:   make([]byte, NormalizeCapacity(capacity, width)),
		width: width,
	}
}

// NormalizeCapacity rounds capacity up to a multiple of width with a
// floor of one width. Mirrors the module init sanity check applied to
// the configured buffer size.
func NormalizeCapacity(capacity, width int) int {
	if capacity < width {
		return width
	}
	if rem := capacity % width; rem != 0 {
		capacity += width - rem
	}
	return capacity
}

// Cap returns the queue capacity in bytes.
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Width returns the message width in bytes.
func (q *Queue) Width() int {
	return q.width
}

// Len returns the number of stored bytes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Avail returns the number of free bytes.
func (q *Queue) Avail() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) - q.count
}

// IsEmpty reports whether the queue holds no message.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count == 0
}

// TryEnqueue appends one serialized message. It returns ErrFull
// without mutating state when less than one message of room remains.
// rec must be exactly one message wide.
func (q *Queue) TryEnqueue(rec []byte) error {
	if len(rec) != q.width {
		return ErrFull
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf)-q.count < q.width {
		return ErrFull
	}
	for _, b := range rec {
		q.buf[q.head] = b
		q.head++
		if q.head == len(q.buf) {
			q.head = 0
		}
	}
	q.count += q.width
	return nil
}

// TryDequeue removes the oldest message into dst. It returns ErrEmpty
// when no complete message is stored. dst must be exactly one message
// wide.
func (q *Queue) TryDequeue(dst []byte) error {
	if len(dst) != q.width {
		return ErrEmpty
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count < q.width {
		return ErrEmpty
	}
	for i := range dst {
		dst[i] = q.buf[q.tail]
		q.tail++
		if q.tail == len(q.buf) {
			q.tail = 0
		}
	}
	q.count -= q.width
	return nil
}

// MarkFullIfNoRoom sets the full flag and reports true when less than
// one message of room remains. The check and the flag transition are
// one atomic step, so the flag is only ever set while the queue truly
// holds a full complement of messages for the consumer to observe.
func (q *Queue) MarkFullIfNoRoom() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buf)-q.count < q.width {
		q.full = true
		return true
	}
	return false
}

// ConsumeFull clears the full flag and reports whether it was set.
// The caller re-enables the receive interrupt on a true return.
func (q *Queue) ConsumeFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.full {
		q.full = false
		return true
	}
	return false
}

// IsFull reports the flow control flag.
func (q *Queue) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.full
}
