package mboxgo_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbox-ipc/mbox-go/pkg/hw/sim"
	"github.com/mbox-ipc/mbox-go/pkg/log"
	"github.com/mbox-ipc/mbox-go/pkg/mbox"
)

const (
	waitFor = 5 * time.Second
	tick    = time.Millisecond
)

// collector records received messages in order.
type collector struct {
	mu   sync.Mutex
	msgs []mbox.Message
}

func (c *collector) OnMessage(length int, msg mbox.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func (c *collector) messages() []mbox.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]mbox.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// duplexFixture runs a full mailbox stack on both ends of a simulated
// pair, each end with its own registry, device and channel.
type duplexFixture struct {
	pair *sim.Pair

	regA, regB *mbox.Registry
	chA, chB   *mbox.Channel
	subA, subB *collector
}

func newDuplex(t *testing.T, queueCapacity int, logger log.Logger) *duplexFixture {
	t.Helper()

	f := &duplexFixture{
		pair: sim.NewPair(sim.Config{}),
		subA: &collector{},
		subB: &collector{},
	}
	t.Cleanup(f.pair.Close)

	cfg := mbox.Config{QueueCapacity: queueCapacity}
	if logger != nil {
		cfg.Logger = logger
	}
	f.regA = mbox.NewRegistryWithConfig(cfg)
	f.regB = mbox.NewRegistryWithConfig(cfg)

	devA := mbox.NewDevice("core-a", nil)
	devB := mbox.NewDevice("core-b", nil)
	require.NoError(t, f.regA.Register(devA, mbox.NewChannel("peer", f.pair.A, f.pair.A.Line())))
	require.NoError(t, f.regB.Register(devB, mbox.NewChannel("peer", f.pair.B, f.pair.B.Line())))

	var err error
	f.chA, err = f.regA.Get(context.Background(), "peer", f.subA)
	require.NoError(t, err)
	t.Cleanup(func() { f.regA.Put(f.chA, f.subA) })

	f.chB, err = f.regB.Get(context.Background(), "peer", f.subB)
	require.NoError(t, err)
	t.Cleanup(func() { f.regB.Put(f.chB, f.subB) })

	return f
}

// TestDuplexRoundTrip verifies word delivery in both directions over
// the full send/interrupt/dispatch pipeline.
func TestDuplexRoundTrip(t *testing.T) {
	f := newDuplex(t, 0, nil)

	require.NoError(t, f.chA.Send(0x1111))
	require.NoError(t, f.chB.Send(0x2222))

	require.Eventually(t, func() bool {
		return f.subB.count() == 1 && f.subA.count() == 1
	}, waitFor, tick)

	assert.Equal(t, []mbox.Message{0x1111}, f.subB.messages())
	assert.Equal(t, []mbox.Message{0x2222}, f.subA.messages())
}

// TestBurstOrdering verifies that a burst far larger than the
// hardware FIFO arrives complete and in order, riding the software
// queues and backpressure.
func TestBurstOrdering(t *testing.T) {
	const burst = 64

	f := newDuplex(t, burst*mbox.MessageSize, nil)

	for i := 0; i < burst; i++ {
		require.NoError(t, f.chA.Send(mbox.Message(i)))
	}

	require.Eventually(t, func() bool {
		return f.subB.count() == burst
	}, waitFor, tick)

	got := f.subB.messages()
	for i := 0; i < burst; i++ {
		require.Equal(t, mbox.Message(i), got[i], "word %d out of order", i)
	}
}

// TestConcurrentSenders verifies that concurrent senders on one
// channel lose no messages.
func TestConcurrentSenders(t *testing.T) {
	const (
		senders   = 4
		perSender = 16
	)

	f := newDuplex(t, senders*perSender*mbox.MessageSize, nil)

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				msg := mbox.Message(s<<16 | i)
				for {
					err := f.chA.Send(msg)
					if err == nil {
						break
					}
					assert.ErrorIs(t, err, mbox.ErrResourceExhausted)
					time.Sleep(tick)
				}
			}
		}(s)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return f.subB.count() == senders*perSender
	}, waitFor, tick)

	seen := make(map[mbox.Message]bool)
	for _, msg := range f.subB.messages() {
		require.False(t, seen[msg], "duplicate message %#x", msg)
		seen[msg] = true
	}
}

// TestSuspendResumeUnderTraffic verifies that a suspend/resume cycle
// between bursts loses nothing.
func TestSuspendResumeUnderTraffic(t *testing.T) {
	f := newDuplex(t, 0, nil)

	require.NoError(t, f.chA.Send(1))
	require.Eventually(t, func() bool {
		return f.subB.count() == 1
	}, waitFor, tick)

	devA := f.chA.Device()
	require.NoError(t, devA.Suspend())
	require.NoError(t, devA.Resume())

	require.NoError(t, f.chA.Send(2))
	require.Eventually(t, func() bool {
		return f.subB.count() == 2
	}, waitFor, tick)
	assert.Equal(t, []mbox.Message{1, 2}, f.subB.messages())
}

// TestEventLogPipeline verifies that the CBOR event log written
// during traffic reads back with the traffic in it.
func TestEventLogPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.mlog")
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)

	f := newDuplex(t, 0, fl)

	const words = 8
	for i := 0; i < words; i++ {
		require.NoError(t, f.chA.Send(mbox.Message(100+i)))
	}
	require.Eventually(t, func() bool {
		return f.subB.count() == words
	}, waitFor, tick)

	// Release both ends so the logger can be closed for reading.
	f.regA.Put(f.chA, f.subA)
	f.regB.Put(f.chB, f.subB)
	require.NoError(t, fl.Close())

	out := log.DirectionOut
	r, err := log.NewFilteredReader(path, log.Filter{Direction: &out})
	require.NoError(t, err)
	defer r.Close()

	events, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, words)
	for i, ev := range events {
		assert.Equal(t, log.CategoryMessage, ev.Category)
		require.NotNil(t, ev.Message)
		assert.Equal(t, uint32(100+i), ev.Message.Word, fmt.Sprintf("event %d", i))
	}
}
