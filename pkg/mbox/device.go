package mbox

import (
	"fmt"
	"sync"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/log"
)

// Device is one underlying mailbox peripheral shared by one or more
// channels. It owns the lifecycle lock serializing activation across
// its channels, the device-wide bring-up counter, and the power
// runtime.
type Device struct {
	name string
	pm   PowerRuntime

	// mu is the suspending lifecycle lock: it guards configured and
	// the one-time bring-up/teardown, and is never taken from the
	// interrupt path.
	mu         sync.Mutex
	configured int

	channels []*Channel
}

// NewDevice creates a device. A nil pm behaves as NopPowerRuntime.
func NewDevice(name string, pm PowerRuntime) *Device {
	if pm == nil {
		pm = NopPowerRuntime{}
	}
	return &Device{name: name, pm: pm}
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Configured returns the device-wide activation count.
func (d *Device) Configured() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.configured
}

// Suspend runs the register context save hook on every channel while
// the device transitions to an inactive power state. A channel whose
// adapter lacks the capability is reported but does not block the
// transition. The wakeup latency constraint is released once every
// save succeeded.
func (d *Device) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for _, c := range d.channels {
		if err := c.saveContext(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		if lc, ok := d.pm.(LatencyConstrainer); ok {
			lc.ClearLatencyConstraint()
		}
	}
	return firstErr
}

// Resume reinstates register context on reactivation. Channels with
// no active users are skipped: nothing was initialized to restore.
func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if lc, ok := d.pm.(LatencyConstrainer); ok {
		lc.SetLatencyConstraint(activeLatencyConstraintUS)
	}
	for _, c := range d.channels {
		if c.useCount == 0 {
			continue
		}
		if err := c.restoreContext(); err != nil {
			if lc, ok := d.pm.(LatencyConstrainer); ok {
				lc.ClearLatencyConstraint()
			}
			return err
		}
	}
	return nil
}

// saveContext delegates to the adapter's context-save operation.
// Called with the device lifecycle lock held.
func (c *Channel) saveContext() error {
	ck, ok := c.hw.(hw.ContextKeeper)
	if !ok {
		err := fmt.Errorf("channel %q: adapter has no context save", c.name)
		c.logPower(log.PowerSave, err)
		return err
	}
	if err := ck.SaveContext(); err != nil {
		c.logPower(log.PowerSave, err)
		return err
	}
	c.logPower(log.PowerSave, nil)
	return nil
}

// restoreContext delegates to the adapter's context-restore
// operation. Called with the device lifecycle lock held and only for
// active channels.
func (c *Channel) restoreContext() error {
	ck, ok := c.hw.(hw.ContextKeeper)
	if !ok {
		err := fmt.Errorf("channel %q: adapter has no context restore", c.name)
		c.logPower(log.PowerRestore, err)
		return err
	}
	if err := ck.RestoreContext(); err != nil {
		c.logPower(log.PowerRestore, err)
		return err
	}
	c.logPower(log.PowerRestore, nil)
	return nil
}
