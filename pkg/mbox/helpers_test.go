package mbox_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbox-ipc/mbox-go/internal/testharness/mock"
	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/log"
	"github.com/mbox-ipc/mbox-go/pkg/mbox"
)

const (
	waitFor = 2 * time.Second
	tick    = time.Millisecond
)

// recorder collects delivered messages in arrival order.
type recorder struct {
	mu   sync.Mutex
	msgs []mbox.Message
}

func (r *recorder) OnMessage(length int, msg mbox.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) messages() []mbox.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mbox.Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// captureLogger collects emitted events for inspection.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *captureLogger) Log(ev log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *captureLogger) byCategory(cat log.Category) []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []log.Event
	for _, ev := range l.events {
		if ev.Category == cat {
			out = append(out, ev)
		}
	}
	return out
}

// fixture bundles one registered, activated channel over mock
// hardware.
type fixture struct {
	reg     *mbox.Registry
	dev     *mbox.Device
	hw      *mock.Hardware
	line    *mock.Line
	channel *mbox.Channel
	sub     *recorder
	logs    *captureLogger
}

type fixtureConfig struct {
	queueCapacity int
	variant       hw.FIFOVariant
	depth         int
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()

	if cfg.depth == 0 {
		cfg.depth = 4
	}
	if cfg.queueCapacity == 0 {
		cfg.queueCapacity = mbox.DefaultQueueCapacity
	}

	f := &fixture{
		hw:   mock.NewHardware(cfg.depth),
		line: mock.NewLine(),
		sub:  &recorder{},
		logs: &captureLogger{},
	}
	f.hw.FIFOVariant = cfg.variant

	f.reg = mbox.NewRegistryWithConfig(mbox.Config{
		QueueCapacity: cfg.queueCapacity,
		Logger:        f.logs,
	})
	f.dev = mbox.NewDevice("testdev", nil)

	ch := mbox.NewChannel("dsp", f.hw, f.line)
	require.NoError(t, f.reg.Register(f.dev, ch))

	got, err := f.reg.Get(context.Background(), "dsp", f.sub)
	require.NoError(t, err)
	f.channel = got

	t.Cleanup(func() { f.reg.Put(f.channel, f.sub) })
	return f
}
