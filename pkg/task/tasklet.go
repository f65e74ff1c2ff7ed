package task

import "sync"

// Tasklet runs a short, non-blocking function on a dedicated
// goroutine. Schedule requests coalesce: scheduling while a run is
// pending or in progress guarantees at least one further run, never
// more than one extra.
//
// The function must not block. It is re-invoked for every coalesced
// batch of Schedule calls until Kill.
type Tasklet struct {
	fn      func()
	trigger chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewTasklet creates and starts a tasklet for fn.
func NewTasklet(fn func()) *Tasklet {
	t := &Tasklet{
		fn:      fn,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	t.wg.Add(1)
	go t.loop()
	return t
}

// Schedule requests a run. It never blocks and is safe from any
// goroutine, including the interrupt dispatch path.
func (t *Tasklet) Schedule() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

// Kill stops the tasklet and waits for any in-progress run to finish.
// Pending schedule requests are discarded. Kill must not be called
// from the tasklet's own function.
func (t *Tasklet) Kill() {
	close(t.stop)
	t.wg.Wait()
}

func (t *Tasklet) loop() {
	defer t.wg.Done()
	for {
		select {
		case <-t.stop:
			return
		case <-t.trigger:
			t.fn()
		}
	}
}
