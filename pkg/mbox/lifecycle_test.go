package mbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbox-ipc/mbox-go/internal/testharness/mock"
	"github.com/mbox-ipc/mbox-go/pkg/mbox"
)

// TestGetPutRefcounts verifies the per-channel and device-wide
// reference counts across a get/get/put/put round trip.
func TestGetPutRefcounts(t *testing.T) {
	h := mock.NewHardware(4)
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	ch := mbox.NewChannel("dsp", h, mock.NewLine())
	require.NoError(t, reg.Register(dev, ch))

	got, err := reg.Get(context.Background(), "dsp", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UseCount())
	assert.Equal(t, 1, dev.Configured())

	startups, _, _, _ := h.Counters()
	assert.Equal(t, 1, startups)

	_, err = reg.Get(context.Background(), "dsp", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UseCount())
	assert.Equal(t, 2, dev.Configured())

	startups, _, _, _ = h.Counters()
	assert.Equal(t, 1, startups, "second user must not re-run bring-up")

	reg.Put(got, nil)
	assert.Equal(t, 1, got.UseCount())
	_, shutdowns, _, _ := h.Counters()
	assert.Equal(t, 0, shutdowns)

	reg.Put(got, nil)
	assert.Equal(t, 0, got.UseCount())
	assert.Equal(t, 0, dev.Configured())
	_, shutdowns, _, _ = h.Counters()
	assert.Equal(t, 1, shutdowns)
}

// TestGetUnknownChannel verifies that resolving an unregistered name
// fails without touching any hardware.
func TestGetUnknownChannel(t *testing.T) {
	h := mock.NewHardware(4)
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	require.NoError(t, reg.Register(dev, mbox.NewChannel("dsp", h, mock.NewLine())))

	_, err := reg.Get(context.Background(), "iva", nil)
	require.ErrorIs(t, err, mbox.ErrNotFound)

	startups, _, _, _ := h.Counters()
	assert.Zero(t, startups)
	assert.Zero(t, dev.Configured())
}

// TestBringUpFailure verifies that a failed device bring-up leaves
// every counter untouched and surfaces the cause.
func TestBringUpFailure(t *testing.T) {
	h := mock.NewHardware(4)
	h.StartupErr = errors.New("clocks not ready")
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	ch := mbox.NewChannel("dsp", h, mock.NewLine())
	require.NoError(t, reg.Register(dev, ch))

	_, err := reg.Get(context.Background(), "dsp", nil)
	require.ErrorIs(t, err, mbox.ErrNoDevice)
	assert.Contains(t, err.Error(), "clocks not ready")

	assert.Zero(t, dev.Configured())
	assert.Zero(t, ch.UseCount())
	require.ErrorIs(t, ch.Send(1), mbox.ErrInactive)
}

// TestMissingBringUpCapability verifies that an adapter without the
// bring-up capability cannot be activated.
func TestMissingBringUpCapability(t *testing.T) {
	bare := mock.NewBare(mock.NewHardware(4))
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	require.NoError(t, reg.Register(dev, mbox.NewChannel("dsp", bare, mock.NewLine())))

	_, err := reg.Get(context.Background(), "dsp", nil)
	require.ErrorIs(t, err, mbox.ErrNoDevice)
	assert.Zero(t, dev.Configured())
}

// TestConcurrentUsers verifies that many concurrent users share one
// bring-up and one teardown.
func TestConcurrentUsers(t *testing.T) {
	const users = 16

	h := mock.NewHardware(4)
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	ch := mbox.NewChannel("dsp", h, mock.NewLine())
	require.NoError(t, reg.Register(dev, ch))

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Get(context.Background(), "dsp", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, users, ch.UseCount())
	assert.Equal(t, users, dev.Configured())
	startups, _, _, _ := h.Counters()
	assert.Equal(t, 1, startups)

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Put(ch, nil)
		}()
	}
	wg.Wait()

	assert.Zero(t, ch.UseCount())
	assert.Zero(t, dev.Configured())
	_, shutdowns, _, _ := h.Counters()
	assert.Equal(t, 1, shutdowns)
}

// TestSharedDeviceChannels verifies that the second channel on an
// already-configured device skips bring-up, and that teardown runs on
// the channel releasing the last device-wide user.
func TestSharedDeviceChannels(t *testing.T) {
	h1 := mock.NewHardware(4)
	h2 := mock.NewHardware(4)
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	ch1 := mbox.NewChannel("dsp", h1, mock.NewLine())
	ch2 := mbox.NewChannel("iva", h2, mock.NewLine())
	require.NoError(t, reg.Register(dev, ch1, ch2))

	_, err := reg.Get(context.Background(), "dsp", nil)
	require.NoError(t, err)
	_, err = reg.Get(context.Background(), "iva", nil)
	require.NoError(t, err)

	startups1, _, _, _ := h1.Counters()
	startups2, _, _, _ := h2.Counters()
	assert.Equal(t, 1, startups1)
	assert.Zero(t, startups2, "device already configured, no second bring-up")
	assert.Equal(t, 2, dev.Configured())

	reg.Put(ch1, nil)
	reg.Put(ch2, nil)

	assert.Zero(t, dev.Configured())
	_, shutdowns2, _, _ := h2.Counters()
	assert.Equal(t, 1, shutdowns2, "last release tears down via its own adapter")
}

// TestPutInactiveChannel verifies that releasing a channel with no
// active users is ignored rather than wrapping the counters.
func TestPutInactiveChannel(t *testing.T) {
	h := mock.NewHardware(4)
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	ch := mbox.NewChannel("dsp", h, mock.NewLine())
	require.NoError(t, reg.Register(dev, ch))

	reg.Put(ch, nil)

	assert.Zero(t, ch.UseCount())
	assert.Zero(t, dev.Configured())
	_, shutdowns, _, _ := h.Counters()
	assert.Zero(t, shutdowns)
}

// TestShutdownFlushesPendingReceive verifies that messages already in
// the software receive queue are dispatched before the last user's
// release returns.
func TestShutdownFlushesPendingReceive(t *testing.T) {
	h := mock.NewHardware(4)
	line := mock.NewLine()
	sub := &recorder{}
	reg := mbox.NewRegistry()
	dev := mbox.NewDevice("testdev", nil)
	ch := mbox.NewChannel("dsp", h, line)
	require.NoError(t, reg.Register(dev, ch))

	_, err := reg.Get(context.Background(), "dsp", sub)
	require.NoError(t, err)

	h.Push(41, 42)
	line.Trigger()
	reg.Put(ch, sub)

	assert.Equal(t, []mbox.Message{41, 42}, sub.messages())
}
