// Package scheduler turns a cron cadence into repeated, serialized
// invocations of the run pipeline.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/evanmh/activitybot/internal/domain"
)

// RunFunc executes one bot run and reports its outcome
type RunFunc func(ctx context.Context) domain.RunOutcome

// Runner fires a RunFunc on a cron cadence with at most one concurrent
// invocation. A trigger that fires while a run is still executing is dropped
// and logged, never queued.
type Runner struct {
	cron  *cron.Cron
	entry cron.EntryID
	run   RunFunc

	mu     sync.Mutex
	active bool

	ctx      context.Context
	onResult func(domain.RunOutcome)
}

// New creates a Runner for the given 5-field cron expression
func New(spec string, run RunFunc) (*Runner, error) {
	r := &Runner{
		cron: cron.New(),
		run:  run,
		ctx:  context.Background(),
	}

	entry, err := r.cron.AddFunc(spec, r.trigger)
	if err != nil {
		return nil, err
	}
	r.entry = entry

	return r, nil
}

// OnResult registers a callback invoked with each run's outcome
func (r *Runner) OnResult(fn func(domain.RunOutcome)) {
	r.onResult = fn
}

// Start fires triggers on the cadence until ctx is cancelled, then waits for
// an in-flight run to finish.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx = ctx
	r.cron.Start()
	log.Printf("scheduler: started, next run at %s", r.NextRun().Format(time.RFC3339))

	<-ctx.Done()
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// NextRun returns the next scheduled fire time
func (r *Runner) NextRun() time.Time {
	return r.cron.Entry(r.entry).Next
}

// Active reports whether a run is currently executing
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Runner) trigger() {
	if !r.acquire() {
		log.Printf("scheduler: previous run still active, dropping trigger")
		return
	}
	defer r.release()

	// A failed run never takes the scheduler down; the next trigger is the
	// retry mechanism.
	out := r.run(r.ctx)
	log.Printf("scheduler: %s", out.Summary())

	if r.onResult != nil {
		r.onResult(out)
	}
}

func (r *Runner) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return false
	}
	r.active = true
	return true
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}
