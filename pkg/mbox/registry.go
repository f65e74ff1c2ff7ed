package mbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mbox-ipc/mbox-go/pkg/log"
	"github.com/mbox-ipc/mbox-go/pkg/queue"
)

// Config holds registry configuration.
type Config struct {
	// QueueCapacity is the software queue size in bytes per channel
	// per direction. Normalized to a multiple of the message width
	// with a floor of one message.
	QueueCapacity int

	// Logger receives mailbox events. Nil disables logging.
	Logger log.Logger
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{QueueCapacity: DefaultQueueCapacity}
}

// Registry resolves channels by name and drives their lifecycle.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	cfg      Config
}

// NewRegistry creates a registry with default configuration.
func NewRegistry() *Registry {
	return NewRegistryWithConfig(DefaultConfig())
}

// NewRegistryWithConfig creates a registry with custom configuration.
func NewRegistryWithConfig(cfg Config) *Registry {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	cfg.QueueCapacity = queue.NormalizeCapacity(cfg.QueueCapacity, MessageSize)
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	return &Registry{
		channels: make(map[string]*Channel),
		cfg:      cfg,
	}
}

// Register binds channels to their device and makes them resolvable
// by name. Each channel gets an instance UUID used in log events.
func (r *Registry) Register(dev *Device, channels ...*Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range channels {
		if _, exists := r.channels[c.name]; exists {
			return fmt.Errorf("channel %q already registered", c.name)
		}
	}
	for _, c := range channels {
		c.dev = dev
		c.id = uuid.New().String()
		c.queueCap = r.cfg.QueueCapacity
		c.logger = r.cfg.Logger
		dev.channels = append(dev.channels, c)
		r.channels[c.name] = c
	}
	return nil
}

// Get resolves a channel by name and activates it. Any number of
// independent callers may Get the same channel; hardware is brought
// up only for the first active user on the device. subscriber, when
// non-nil, is registered for every received message.
//
// Errors: ErrNotFound when the name resolves to nothing, ErrNoDevice
// (with the cause attached) when activation fails.
func (r *Registry) Get(ctx context.Context, name string, subscriber Subscriber) (*Channel, error) {
	r.mu.RLock()
	c, ok := r.channels[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := c.startup(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if subscriber != nil {
		c.subscribers.register(subscriber)
	}
	return c, nil
}

// Put releases one user of the channel and unregisters the
// subscriber, when non-nil. Hardware is torn down when the last user
// across all of the device's channels releases.
func (r *Registry) Put(c *Channel, subscriber Subscriber) {
	c.shutdown()
	if subscriber != nil {
		c.subscribers.unregister(subscriber)
	}
}

// Lookup returns a registered channel without activating it.
func (r *Registry) Lookup(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.channels[name]
	return c, ok
}

// Names returns the registered channel names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}
