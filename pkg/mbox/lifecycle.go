package mbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
	"github.com/mbox-ipc/mbox-go/pkg/log"
	"github.com/mbox-ipc/mbox-go/pkg/queue"
	"github.com/mbox-ipc/mbox-go/pkg/task"
)

// startup activates the channel under the device lifecycle lock:
// power up, one-time hardware bring-up on the first activation of any
// channel on the device, queue and interrupt setup on this channel's
// first user. Every failure unwinds completely; no partially
// initialized channel is left reachable.
func (c *Channel) startup(ctx context.Context) error {
	d := c.dev
	if d == nil {
		return errors.New("channel not registered")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.pm.Get(ctx); err != nil {
		return fmt.Errorf("requesting active power state: %w", err)
	}

	if d.configured == 0 {
		ini, ok := c.hw.(hw.Initializer)
		if !ok {
			d.pm.Put()
			return errors.New("adapter has no bring-up operation")
		}
		if err := ini.Startup(); err != nil {
			d.pm.Put()
			return fmt.Errorf("device bring-up: %w", err)
		}
	}
	d.configured++

	if c.useCount == 0 {
		if err := c.activate(); err != nil {
			d.configured--
			if d.configured == 0 {
				if ini, ok := c.hw.(hw.Initializer); ok {
					ini.Shutdown()
				}
			}
			d.pm.Put()
			return err
		}
	}
	c.useCount++

	c.logLifecycle(log.LifecycleStartup, c.useCount, d.configured)
	return nil
}

// activate allocates the queues and deferred tasks and claims the
// interrupt line. Called with the device lifecycle lock held and
// useCount zero.
func (c *Channel) activate() error {
	c.txLock.Lock()
	c.txq = queue.New(c.queueCap, MessageSize)
	c.txLock.Unlock()
	c.rxq = queue.New(c.queueCap, MessageSize)

	c.txTasklet = task.NewTasklet(c.drainTransmit)
	c.rxWorker = task.NewWorker(c.dispatchReceive)

	reg, err := c.line.Request(c.name, c.interrupt)
	if err != nil {
		c.txTasklet.Kill()
		c.rxWorker.Stop()
		c.txTasklet = nil
		c.rxWorker = nil
		c.txLock.Lock()
		c.txq = nil
		c.txLock.Unlock()
		c.rxq = nil
		return fmt.Errorf("requesting mailbox interrupt: %w", err)
	}
	c.irqReg = reg

	c.hw.EnableIRQ(hw.IRQRx)
	return nil
}

// shutdown releases one user. The last user's release waits for any
// in-flight receive dispatch, frees the interrupt claim and the
// queues, and tears the device down when no channel on it remains
// active.
func (c *Channel) shutdown() {
	d := c.dev
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if c.useCount == 0 {
		c.logError("shutdown", errors.New("release of an inactive channel"))
		return
	}

	c.rxWorker.Flush()

	c.useCount--
	if c.useCount == 0 {
		c.irqReg.Free()
		c.irqReg = nil
		c.txTasklet.Kill()
		c.rxWorker.Stop()
		c.txTasklet = nil
		c.rxWorker = nil
		c.txLock.Lock()
		c.txq = nil
		c.txLock.Unlock()
		c.rxq = nil
	}

	d.configured--
	if d.configured == 0 {
		if ini, ok := c.hw.(hw.Initializer); ok {
			ini.Shutdown()
		}
	}
	d.pm.Put()

	c.logLifecycle(log.LifecycleShutdown, c.useCount, d.configured)
}
