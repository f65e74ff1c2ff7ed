// Package commands implements the mbox-logdump CLI commands.
package commands

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mbox-ipc/mbox-go/pkg/log"
)

// View prints matching events in human-readable form.
func View(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	channel := fs.String("channel", "", "filter by channel name")
	channelID := fs.String("channel-id", "", "filter by channel instance ID")
	direction := fs.String("direction", "", "filter by direction: in, out")
	category := fs.String("category", "", "filter by category: message, lifecycle, flow, power, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mbox-logdump view [flags] <file.mlog>")
	}

	filter, err := buildFilter(*channel, *channelID, *direction, *category)
	if err != nil {
		return err
	}

	r, err := log.NewFilteredReader(fs.Arg(0), filter)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		event, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading log: %w", err)
		}
		formatEvent(w, event)
	}
}

func buildFilter(channel, channelID, direction, category string) (log.Filter, error) {
	filter := log.Filter{
		Channel:   channel,
		ChannelID: channelID,
	}

	switch strings.ToLower(direction) {
	case "":
	case "in":
		d := log.DirectionIn
		filter.Direction = &d
	case "out":
		d := log.DirectionOut
		filter.Direction = &d
	default:
		return log.Filter{}, fmt.Errorf("unknown direction %q", direction)
	}

	switch strings.ToLower(category) {
	case "":
	case "message":
		c := log.CategoryMessage
		filter.Category = &c
	case "lifecycle":
		c := log.CategoryLifecycle
		filter.Category = &c
	case "flow":
		c := log.CategoryFlow
		filter.Category = &c
	case "power":
		c := log.CategoryPower
		filter.Category = &c
	case "error":
		c := log.CategoryError
		filter.Category = &c
	default:
		return log.Filter{}, fmt.Errorf("unknown category %q", category)
	}

	return filter, nil
}

// formatEvent writes one event as a header line plus type-specific
// detail lines.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [%s:%s] %-3s %s\n",
		ts, event.Channel, shortenID(event.ChannelID),
		event.Direction.String(), event.Category.String())

	switch {
	case event.Message != nil:
		path := "queued"
		if event.Message.FastPath {
			path = "fast path"
		}
		fmt.Fprintf(w, "  Word: 0x%08x (%d bytes, %s)\n",
			event.Message.Word, event.Message.Length, path)
		if event.Direction == log.DirectionIn {
			fmt.Fprintf(w, "  Subscribers: %d\n", event.Message.Subscribers)
		}

	case event.Lifecycle != nil:
		fmt.Fprintf(w, "  %s users=%d configured=%d\n",
			event.Lifecycle.Action.String(),
			event.Lifecycle.UseCount, event.Lifecycle.Configured)

	case event.Flow != nil:
		if event.Flow.Throttled {
			fmt.Fprintln(w, "  Receive throttled: queue saturated")
		} else {
			fmt.Fprintln(w, "  Receive resumed: queue drained")
		}

	case event.Power != nil:
		fmt.Fprintf(w, "  %s", event.Power.Action.String())
		if event.Power.Err != "" {
			fmt.Fprintf(w, " failed: %s", event.Power.Err)
		}
		fmt.Fprintln(w)

	case event.Error != nil:
		fmt.Fprintf(w, "  %s: %s\n", event.Error.Op, event.Error.Message)
	}
}

// shortenID returns the first 8 characters of the channel ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
