package threadpool

import (
	"sync"
	"testing"
	"time"

	"coophttp/internal/task"
)

type fakeWaker struct {
	mu    sync.Mutex
	woken bool
}

func (w *fakeWaker) Wake() {
	w.mu.Lock()
	w.woken = true
	w.mu.Unlock()
}

type fakeContext struct{ w task.Waker }

func (c fakeContext) Waker() task.Waker { return c.w }

func TestRunExecutesJobOnWorker(t *testing.T) {
	p := New(2, 4)
	p.Start()
	defer p.Stop()

	done := make(chan struct{})
	p.Run(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run within timeout")
	}
}

func TestThreadAwaitResolvesWithResult(t *testing.T) {
	p := New(1, 4)
	p.Start()
	defer p.Stop()

	f := ThreadAwait(p, func() int {
		return 42
	})

	w := &fakeWaker{}
	cx := fakeContext{w: w}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.Poll(cx) == task.Ready {
			if f.Value() != 42 {
				t.Fatalf("expected 42, got %d", f.Value())
			}
			return
		}
	}
	t.Fatal("future never became ready")
}

func TestRunSurvivesJobPanicAndKeepsProcessingJobs(t *testing.T) {
	p := New(1, 4)
	p.Start()
	defer p.Stop()

	p.Run(func() { panic("boom") })

	done := make(chan struct{})
	p.Run(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not process a job submitted after a panicking one")
	}
}

func TestThreadAwaitReportsErrOnWorkerPanic(t *testing.T) {
	p := New(1, 4)
	p.Start()
	defer p.Stop()

	f := ThreadAwait(p, func() int {
		panic("boom")
	})

	w := &fakeWaker{}
	cx := fakeContext{w: w}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.Poll(cx) == task.Ready {
			if f.Err() == nil {
				t.Fatal("expected Err to report the worker disconnect")
			}
			return
		}
	}
	t.Fatal("future never became ready")
}

func TestPoolPanicsOnJobQueueOverflow(t *testing.T) {
	p := New(1, 1)
	// Never started: jobs accumulate untouched so the second push overflows.
	p.Run(func() {})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on job queue overflow")
		}
	}()
	p.Run(func() {})
}
