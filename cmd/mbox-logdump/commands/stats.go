package commands

import (
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/mbox-ipc/mbox-go/pkg/log"
)

// channelStats accumulates per-channel event counts.
type channelStats struct {
	sent      int
	received  int
	fastPath  int
	throttled int
	lifecycle int
	power     int
	errors    int
}

// Stats summarizes event counts per channel.
func Stats(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: mbox-logdump stats <file.mlog>")
	}

	r, err := log.NewReader(fs.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	perChannel := make(map[string]*channelStats)
	total := 0
	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading log: %w", err)
		}
		total++

		s := perChannel[event.Channel]
		if s == nil {
			s = &channelStats{}
			perChannel[event.Channel] = s
		}
		switch event.Category {
		case log.CategoryMessage:
			if event.Direction == log.DirectionOut {
				s.sent++
				if event.Message != nil && event.Message.FastPath {
					s.fastPath++
				}
			} else {
				s.received++
			}
		case log.CategoryLifecycle:
			s.lifecycle++
		case log.CategoryFlow:
			if event.Flow != nil && event.Flow.Throttled {
				s.throttled++
			}
		case log.CategoryPower:
			s.power++
		case log.CategoryError:
			s.errors++
		}
	}

	names := make([]string, 0, len(perChannel))
	for name := range perChannel {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Events: %d\n\n", total)
	for _, name := range names {
		s := perChannel[name]
		fmt.Fprintf(w, "Channel %s:\n", name)
		fmt.Fprintf(w, "  Sent:      %d (%d fast path)\n", s.sent, s.fastPath)
		fmt.Fprintf(w, "  Received:  %d\n", s.received)
		fmt.Fprintf(w, "  Throttled: %d times\n", s.throttled)
		fmt.Fprintf(w, "  Lifecycle: %d  Power: %d  Errors: %d\n",
			s.lifecycle, s.power, s.errors)
	}
	return nil
}
