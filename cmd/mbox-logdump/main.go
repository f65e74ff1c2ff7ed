// Command mbox-logdump views and summarizes mailbox event log files.
//
// Log files are created by passing a CBOR file logger to the mailbox
// registry, for example with mbox-shell's -log flag.
//
// Usage:
//
//	mbox-logdump <command> [flags] <file.mlog>
//
// Commands:
//
//	view    Print events in human-readable form
//	stats   Summarize event counts per channel and category
//
// Examples:
//
//	# View all events
//	mbox-logdump view session.mlog
//
//	# View only received messages on one channel
//	mbox-logdump view -channel dsp -direction in session.mlog
//
//	# Count events
//	mbox-logdump stats session.mlog
package main

import (
	"fmt"
	"os"

	"github.com/mbox-ipc/mbox-go/cmd/mbox-logdump/commands"
)

const usage = `mbox-logdump - Mailbox Event Log Viewer

Usage:
  mbox-logdump <command> [flags] <file.mlog>

Commands:
  view    Print events in human-readable form
  stats   Summarize event counts per channel and category

Use "mbox-logdump <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = commands.View(args, os.Stdout)
	case "stats":
		err = commands.Stats(args, os.Stdout)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
