package task

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTaskletRunsOnSchedule(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 8)

	tl := NewTasklet(func() {
		runs.Add(1)
		done <- struct{}{}
	})
	defer tl.Kill()

	tl.Schedule()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tasklet did not run")
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
}

func TestTaskletCoalescesSchedules(t *testing.T) {
	var runs atomic.Int32
	gate := make(chan struct{})

	tl := NewTasklet(func() {
		runs.Add(1)
		<-gate
	})
	defer tl.Kill()

	tl.Schedule()
	// Wait for the first run to start.
	for runs.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// Many schedules while the run is in flight coalesce into one.
	for i := 0; i < 10; i++ {
		tl.Schedule()
	}
	gate <- struct{}{} // finish first run
	gate <- struct{}{} // finish coalesced run

	// Allow any (incorrect) extra run to surface.
	time.Sleep(20 * time.Millisecond)
	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2", got)
	}
}

func TestTaskletKillWaitsForRun(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})

	tl := NewTasklet(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	tl.Schedule()
	<-started
	tl.Kill()

	if !finished.Load() {
		t.Error("Kill returned before the in-flight run finished")
	}
}

func TestWorkerFlushWaitsForPendingWork(t *testing.T) {
	var runs atomic.Int32

	w := NewWorker(func() {
		time.Sleep(10 * time.Millisecond)
		runs.Add(1)
	})
	defer w.Stop()

	w.Schedule()
	w.Flush()

	if runs.Load() == 0 {
		t.Error("Flush returned before scheduled work ran")
	}
}

func TestWorkerFlushWaitsForInFlightWork(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})

	w := NewWorker(func() {
		select {
		case <-started:
		default:
			close(started)
		}
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})
	defer w.Stop()

	w.Schedule()
	<-started
	w.Flush()

	if !finished.Load() {
		t.Error("Flush returned before the in-flight run finished")
	}
}

func TestWorkerFlushAfterStop(t *testing.T) {
	w := NewWorker(func() {})
	w.Stop()

	done := make(chan struct{})
	go func() {
		w.Flush()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Flush on a stopped worker blocked")
	}
}

func TestWorkerConcurrentScheduleAndFlush(t *testing.T) {
	var runs atomic.Int32
	w := NewWorker(func() { runs.Add(1) })
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				w.Schedule()
			}
			w.Flush()
		}()
	}
	wg.Wait()

	if runs.Load() == 0 {
		t.Error("no runs observed")
	}
}
