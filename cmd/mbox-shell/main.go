// Command mbox-shell runs an interactive mailbox session against a
// simulated endpoint pair. The far endpoint echoes every word back,
// so sends come straight back as received messages.
//
// Usage:
//
//	mbox-shell [flags]
//
// Flags:
//
//	-config <file>  Load channel and queue settings from a YAML file
//	-log <file>     Append mailbox events to a CBOR log file
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mbox-ipc/mbox-go/cmd/mbox-shell/interactive"
	"github.com/mbox-ipc/mbox-go/pkg/config"
	"github.com/mbox-ipc/mbox-go/pkg/log"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	logPath := flag.String("log", "", "CBOR event log file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var logger log.Logger = log.NoopLogger{}
	if *logPath != "" {
		fl, err := log.NewFileLogger(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening event log: %v\n", err)
			os.Exit(1)
		}
		defer fl.Close()
		logger = fl
	}

	shell, err := interactive.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting shell: %v\n", err)
		os.Exit(1)
	}
	defer shell.Close()

	if err := shell.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
