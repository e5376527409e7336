package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evanmh/activitybot/internal/domain"
)

func TestNew_RejectsBadSpec(t *testing.T) {
	if _, err := New("every now and then", func(ctx context.Context) domain.RunOutcome {
		return domain.RunOutcome{}
	}); err == nil {
		t.Error("New should reject a malformed cron expression")
	}
}

func TestRunner_SingleFlight(t *testing.T) {
	var runs atomic.Int32
	block := make(chan struct{})
	started := make(chan struct{})

	r, err := New("* * * * *", func(ctx context.Context) domain.RunOutcome {
		runs.Add(1)
		close(started)
		<-block
		return domain.RunOutcome{ID: "run-1"}
	})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.trigger()
	}()
	<-started

	if !r.Active() {
		t.Error("runner should report active during a run")
	}

	// Trigger fires while the first run is still executing: dropped, not
	// queued. The call returns immediately without waiting for the block.
	r.trigger()

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 (overlapping trigger dropped)", got)
	}

	close(block)
	wg.Wait()

	if r.Active() {
		t.Error("runner should be idle after the run completes")
	}

}

func TestRunner_LatchReleasesBetweenRuns(t *testing.T) {
	var runs atomic.Int32
	r, err := New("* * * * *", func(ctx context.Context) domain.RunOutcome {
		runs.Add(1)
		return domain.RunOutcome{}
	})
	if err != nil {
		t.Fatal(err)
	}

	r.trigger()
	r.trigger()

	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2 (sequential triggers both run)", got)
	}
}

func TestRunner_ActiveRunUnaffectedByDrop(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	finished := make(chan domain.RunOutcome, 1)

	r, err := New("* * * * *", func(ctx context.Context) domain.RunOutcome {
		close(started)
		<-block
		return domain.RunOutcome{ID: "steady"}
	})
	if err != nil {
		t.Fatal(err)
	}
	r.OnResult(func(out domain.RunOutcome) { finished <- out })

	go r.trigger()
	<-started

	r.trigger() // dropped
	close(block)

	select {
	case out := <-finished:
		if out.ID != "steady" {
			t.Errorf("outcome ID = %q, want steady", out.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("active run did not complete")
	}
}

func TestRunner_StartStopsOnCancel(t *testing.T) {
	r, err := New("* * * * *", func(ctx context.Context) domain.RunOutcome {
		return domain.RunOutcome{}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	// NextRun is populated once the cron has started
	deadline := time.Now().Add(2 * time.Second)
	for r.NextRun().IsZero() {
		if time.Now().After(deadline) {
			t.Fatal("NextRun never populated")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
