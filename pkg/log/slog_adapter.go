package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes mailbox events to an slog.Logger. Useful for
// development when you want to see channel activity in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors log at Error level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("channel", event.Channel),
		slog.String("channel_id", event.ChannelID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	level := slog.LevelDebug

	switch {
	case event.Message != nil:
		attrs = append(attrs,
			slog.Uint64("word", uint64(event.Message.Word)),
			slog.Int("length", event.Message.Length),
		)
		if event.Message.FastPath {
			attrs = append(attrs, slog.Bool("fast_path", true))
		}
		if event.Message.Subscribers > 0 {
			attrs = append(attrs, slog.Int("subscribers", event.Message.Subscribers))
		}
	case event.Lifecycle != nil:
		attrs = append(attrs,
			slog.String("action", event.Lifecycle.Action.String()),
			slog.Int("use_count", event.Lifecycle.UseCount),
			slog.Int("configured", event.Lifecycle.Configured),
		)
	case event.Flow != nil:
		attrs = append(attrs, slog.Bool("throttled", event.Flow.Throttled))
	case event.Power != nil:
		attrs = append(attrs, slog.String("action", event.Power.Action.String()))
		if event.Power.Err != "" {
			attrs = append(attrs, slog.String("error", event.Power.Err))
		}
	case event.Error != nil:
		level = slog.LevelError
		attrs = append(attrs,
			slog.String("op", event.Error.Op),
			slog.String("error", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "mbox event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
