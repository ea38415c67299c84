package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTask(t *testing.T) {
	pool := NewPool(2, 8)
	defer pool.Close()

	done := make(chan struct{})
	pool.Submit(0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestSubmitHonorsDelay(t *testing.T) {
	pool := NewPool(1, 8)
	defer pool.Close()

	delay := 100 * time.Millisecond
	start := time.Now()
	done := make(chan time.Duration, 1)
	pool.Submit(delay, func() { done <- time.Since(start) })

	select {
	case elapsed := <-done:
		if elapsed < delay {
			t.Errorf("task ran after %v, want at least %v", elapsed, delay)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task did not run")
	}
}

func TestCloseWaitsForInFlightTasks(t *testing.T) {
	pool := NewPool(2, 8)

	var completed atomic.Int32
	var started sync.WaitGroup
	started.Add(2)
	for i := 0; i < 2; i++ {
		pool.Submit(0, func() {
			started.Done()
			time.Sleep(50 * time.Millisecond)
			completed.Add(1)
		})
	}
	started.Wait()
	pool.Close()

	if got := completed.Load(); got != 2 {
		t.Errorf("completed %d tasks before Close returned, want 2", got)
	}
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	pool := NewPool(1, 8)
	pool.Close()

	// Must neither run nor panic.
	pool.Submit(0, func() { t.Error("task ran after Close") })
	pool.Submit(10*time.Millisecond, func() { t.Error("delayed task ran after Close") })
	time.Sleep(50 * time.Millisecond)
}

func TestCloseCancelsPendingTimers(t *testing.T) {
	pool := NewPool(1, 8)

	pool.Submit(time.Hour, func() { t.Error("far-future task ran") })
	done := make(chan struct{})
	go func() {
		pool.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a pending timer")
	}
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := NewPool(1, 8)
	defer pool.Close()

	pool.Submit(0, func() { panic("boom") })

	done := make(chan struct{})
	pool.Submit(0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panicking task")
	}
}
