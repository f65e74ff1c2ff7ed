// Package interactive implements the mbox-shell command loop.
package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mbox-ipc/mbox-go/pkg/config"
	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/hw/sim"
	"github.com/mbox-ipc/mbox-go/pkg/log"
	"github.com/mbox-ipc/mbox-go/pkg/mbox"
)

// Shell drives one mailbox channel over a simulated endpoint pair
// from an interactive prompt. The peer endpoint echoes every received
// word back.
type Shell struct {
	rl   *readline.Instance
	pair *sim.Pair

	reg     *mbox.Registry
	dev     *mbox.Device
	channel *mbox.Channel
	sub     mbox.Subscriber

	peerReg hw.IRQRegistration
}

// New builds the simulated pair, activates the channel and installs
// the echo peer.
func New(cfg config.Config, logger log.Logger) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mbox> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	name, variant, err := channelFromConfig(cfg)
	if err != nil {
		rl.Close()
		return nil, err
	}

	s := &Shell{
		rl:   rl,
		pair: sim.NewPair(sim.Config{VariantA: variant}),
	}

	s.reg = mbox.NewRegistryWithConfig(mbox.Config{
		QueueCapacity: cfg.QueueCapacity,
		Logger:        logger,
	})
	s.dev = mbox.NewDevice("sim", nil)
	ch := mbox.NewChannel(name, s.pair.A, s.pair.A.Line())
	if err := s.reg.Register(s.dev, ch); err != nil {
		s.close()
		return nil, err
	}

	s.sub = mbox.SubscriberFunc(func(length int, msg mbox.Message) {
		fmt.Fprintf(rl.Stdout(), "recv 0x%08x\n", uint32(msg))
	})
	s.channel, err = s.reg.Get(context.Background(), name, s.sub)
	if err != nil {
		s.close()
		return nil, err
	}

	if err := s.startEchoPeer(); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// channelFromConfig picks the first configured channel, or a default
// when the configuration names none.
func channelFromConfig(cfg config.Config) (string, hw.FIFOVariant, error) {
	for _, dev := range cfg.Devices {
		for _, ch := range dev.Channels {
			variant, err := config.ParseVariant(ch.Variant)
			if err != nil {
				return "", 0, err
			}
			return ch.Name, variant, nil
		}
	}
	return "remote", hw.VariantLevel, nil
}

// startEchoPeer services the far endpoint: every word it receives is
// written straight back.
func (s *Shell) startEchoPeer() error {
	b := s.pair.B
	reg, err := b.Line().Request("echo", func() {
		if !b.IsIRQ(hw.IRQRx) {
			return
		}
		for !b.Empty() {
			b.Write(b.Read())
		}
		b.AckIRQ(hw.IRQRx)
	})
	if err != nil {
		return err
	}
	s.peerReg = reg
	b.EnableIRQ(hw.IRQRx)
	return nil
}

// Run reads and executes commands until quit or EOF.
func (s *Shell) Run() error {
	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "send", "s":
			s.cmdSend(args)

		case "burst", "b":
			s.cmdBurst(args)

		case "status":
			s.cmdStatus()

		case "suspend":
			s.cmdSuspend()

		case "resume":
			s.cmdResume()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return nil

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

// Close releases the channel and stops the simulation.
func (s *Shell) Close() {
	s.close()
}

func (s *Shell) close() {
	if s.peerReg != nil {
		s.peerReg.Free()
		s.peerReg = nil
	}
	if s.channel != nil {
		s.reg.Put(s.channel, s.sub)
		s.channel = nil
	}
	if s.pair != nil {
		s.pair.Close()
		s.pair = nil
	}
	s.rl.Close()
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Mailbox Shell Commands:
  send <word>   - Send one 32-bit word (decimal or 0x hex)
  burst <n>     - Send words 0..n-1 back to back
  status        - Show channel and device state
  suspend       - Save context and release the latency constraint
  resume        - Reinstate context for active channels
  help          - Show this help
  quit          - Exit`)
}

func (s *Shell) cmdSend(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: send <word>")
		return
	}
	word, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "bad word %q: %v\n", args[0], err)
		return
	}
	if err := s.channel.Send(mbox.Message(word)); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "send failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "sent 0x%08x\n", uint32(word))
}

func (s *Shell) cmdBurst(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: burst <count>")
		return
	}
	count, err := strconv.Atoi(args[0])
	if err != nil || count <= 0 {
		fmt.Fprintf(s.rl.Stdout(), "bad count %q\n", args[0])
		return
	}

	sent := 0
	for i := 0; i < count; i++ {
		if err := s.channel.Send(mbox.Message(i)); err != nil {
			fmt.Fprintf(s.rl.Stdout(), "send %d failed: %v\n", i, err)
			break
		}
		sent++
	}
	fmt.Fprintf(s.rl.Stdout(), "sent %d/%d words\n", sent, count)
}

func (s *Shell) cmdStatus() {
	out := s.rl.Stdout()
	fmt.Fprintf(out, "channel:     %s (%s)\n", s.channel.Name(), s.channel.ID())
	fmt.Fprintf(out, "users:       %d\n", s.channel.UseCount())
	fmt.Fprintf(out, "subscribers: %d\n", s.channel.Subscribers())
	fmt.Fprintf(out, "configured:  %d\n", s.dev.Configured())
	fmt.Fprintf(out, "peer fifo:   %d pending\n", s.pair.B.Pending())
}

func (s *Shell) cmdSuspend() {
	if err := s.dev.Suspend(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "suspend: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "suspended")
}

func (s *Shell) cmdResume() {
	if err := s.dev.Resume(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "resume: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "resumed")
}
