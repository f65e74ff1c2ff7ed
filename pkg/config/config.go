// Package config loads mailbox configuration: the software queue
// capacity and the static channel layout of each device.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/queue"
)

// DefaultQueueCapacity is the software queue size in bytes when the
// configuration does not set one.
const DefaultQueueCapacity = 256

// Config is the top-level mailbox configuration.
type Config struct {
	// QueueCapacity is the software queue size in bytes, shared by
	// every channel. Normalized to a multiple of the message width
	// with a floor of one message.
	QueueCapacity int `yaml:"queue_capacity"`

	// Devices lists the mailbox devices and their channels.
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes one mailbox device.
type DeviceConfig struct {
	// Name identifies the device.
	Name string `yaml:"name"`

	// Channels lists the device's channels.
	Channels []ChannelConfig `yaml:"channels"`
}

// ChannelConfig describes one channel.
type ChannelConfig struct {
	// Name is the channel's lookup name.
	Name string `yaml:"name"`

	// Variant selects the FIFO behavior policy: "level",
	// "single-message" or "write-blind". Empty means "level".
	Variant string `yaml:"variant"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{QueueCapacity: DefaultQueueCapacity}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration bytes and validates them.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.QueueCapacity = queue.NormalizeCapacity(cfg.QueueCapacity, hw.WordSize)
	return cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool)
	for _, dev := range c.Devices {
		if dev.Name == "" {
			return fmt.Errorf("device with empty name")
		}
		for _, ch := range dev.Channels {
			if ch.Name == "" {
				return fmt.Errorf("device %q: channel with empty name", dev.Name)
			}
			if seen[ch.Name] {
				return fmt.Errorf("duplicate channel name %q", ch.Name)
			}
			seen[ch.Name] = true
			if _, err := ParseVariant(ch.Variant); err != nil {
				return fmt.Errorf("channel %q: %w", ch.Name, err)
			}
		}
	}
	return nil
}

// ParseVariant maps a configuration string to a FIFO variant.
func ParseVariant(s string) (hw.FIFOVariant, error) {
	switch s {
	case "", "level":
		return hw.VariantLevel, nil
	case "single-message":
		return hw.VariantSingleMessage, nil
	case "write-blind":
		return hw.VariantWriteBlind, nil
	default:
		return 0, fmt.Errorf("unknown fifo variant %q", s)
	}
}
