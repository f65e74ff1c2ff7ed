package commands

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbox-ipc/mbox-go/pkg/log"
)

func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.mlog")
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)
	defer fl.Close()

	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	fl.Log(log.Event{
		Timestamp: base,
		ChannelID: "aaaaaaaa-0000-0000-0000-000000000000",
		Channel:   "dsp",
		Direction: log.DirectionOut,
		Category:  log.CategoryMessage,
		Message:   &log.MessageEvent{Word: 0xCAFE, Length: 4, FastPath: true},
	})
	fl.Log(log.Event{
		Timestamp: base.Add(time.Millisecond),
		ChannelID: "aaaaaaaa-0000-0000-0000-000000000000",
		Channel:   "dsp",
		Direction: log.DirectionIn,
		Category:  log.CategoryMessage,
		Message:   &log.MessageEvent{Word: 0xCAFE, Length: 4, Subscribers: 1},
	})
	fl.Log(log.Event{
		Timestamp: base.Add(2 * time.Millisecond),
		ChannelID: "bbbbbbbb-0000-0000-0000-000000000000",
		Channel:   "iva",
		Direction: log.DirectionNone,
		Category:  log.CategoryFlow,
		Flow:      &log.FlowEvent{Throttled: true},
	})
	return path
}

func TestViewAllEvents(t *testing.T) {
	path := writeTestLog(t)

	var out bytes.Buffer
	require.NoError(t, View([]string{path}, &out))

	s := out.String()
	assert.Contains(t, s, "0x0000cafe")
	assert.Contains(t, s, "fast path")
	assert.Contains(t, s, "Subscribers: 1")
	assert.Contains(t, s, "Receive throttled")
}

func TestViewFilterByChannelAndDirection(t *testing.T) {
	path := writeTestLog(t)

	var out bytes.Buffer
	require.NoError(t, View([]string{"-channel", "dsp", "-direction", "in", path}, &out))

	s := out.String()
	assert.Contains(t, s, "IN")
	assert.NotContains(t, s, "fast path", "outgoing event must be filtered")
	assert.NotContains(t, s, "iva")
}

func TestViewRejectsBadFilter(t *testing.T) {
	path := writeTestLog(t)
	require.Error(t, View([]string{"-direction", "sideways", path}, &bytes.Buffer{}))
}

func TestStats(t *testing.T) {
	path := writeTestLog(t)

	var out bytes.Buffer
	require.NoError(t, Stats([]string{path}, &out))

	s := out.String()
	assert.Contains(t, s, "Events: 3")
	assert.Contains(t, s, "Channel dsp:")
	assert.Contains(t, s, "Sent:      1 (1 fast path)")
	assert.Contains(t, s, "Received:  1")
	assert.Contains(t, s, "Channel iva:")
	assert.Contains(t, s, "Throttled: 1 times")
}
