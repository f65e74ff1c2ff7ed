package task

import "sync"

// Worker runs a function on a dedicated goroutine, like Tasklet, but
// the function is allowed to block. Flush lets a caller wait until all
// scheduled work has completed, which the channel teardown path uses
// before freeing the receive queue.
type Worker struct {
	fn      func()
	trigger chan struct{}
	flush   chan chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewWorker creates and starts a worker for fn.
func NewWorker(fn func()) *Worker {
	w := &Worker{
		fn:      fn,
		trigger: make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		stop:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Schedule requests a run. It never blocks; requests coalesce.
func (w *Worker) Schedule() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Flush waits until every schedule request issued before the call has
// been served and any in-flight run has returned. Flushing a stopped
// worker returns immediately.
func (w *Worker) Flush() {
	ack := make(chan struct{})
	select {
	case w.flush <- ack:
		<-ack
	case <-w.stop:
	}
}

// Stop terminates the worker and waits for any in-progress run.
// Pending schedule requests are discarded.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case <-w.trigger:
			w.fn()
		case ack := <-w.flush:
			// Serve pending work before acknowledging, so Flush
			// covers requests issued before it.
			select {
			case <-w.trigger:
				w.fn()
			default:
			}
			close(ack)
		}
	}
}
