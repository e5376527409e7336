package api

import (
	"sync"
	"time"

	"github.com/evanmh/activitybot/internal/domain"
)

// historySize bounds the in-memory outcome ring. Nothing is persisted.
const historySize = 50

// RunView is the JSON shape of a run outcome
type RunView struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Branch       string    `json:"branch,omitempty"`
	PRNumber     int       `json:"pr_number,omitempty"`
	PRURL        string    `json:"pr_url,omitempty"`
	FilesChanged int       `json:"files_changed"`
	Stage        string    `json:"stage"`
	Error        string    `json:"error,omitempty"`
}

// Status is the JSON shape of the bot's current state
type Status struct {
	State   string     `json:"state"` // idle | running
	Stage   string     `json:"stage,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
	LastRun *RunView   `json:"last_run,omitempty"`
}

// ViewOf converts an outcome for JSON serving
func ViewOf(out domain.RunOutcome) RunView {
	view := RunView{
		ID:           out.ID,
		StartedAt:    out.StartedAt,
		FinishedAt:   out.FinishedAt,
		Branch:       out.Branch,
		PRNumber:     out.PRNumber,
		PRURL:        out.PRURL,
		FilesChanged: out.FilesChanged,
		Stage:        string(out.Stage),
	}
	if out.Err != nil {
		view.Error = out.Err.Error()
	}
	return view
}

// Tracker holds the bot's live state and recent outcomes for the status API
type Tracker struct {
	mu       sync.RWMutex
	state    domain.RunState
	stage    domain.Stage
	outcomes []domain.RunOutcome // newest first

	// NextRun, when set, supplies the next scheduled fire time
	NextRun func() time.Time
}

// NewTracker creates an idle Tracker
func NewTracker() *Tracker {
	return &Tracker{state: domain.StateIdle}
}

// RunStarted marks the bot as running
func (t *Tracker) RunStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = domain.StateRunning
	t.stage = ""
}

// StageChanged records the stage currently executing
func (t *Tracker) StageChanged(stage domain.Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stage = stage
}

// RunFinished records an outcome and returns the bot to idle
func (t *Tracker) RunFinished(out domain.RunOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = domain.StateIdle
	t.stage = ""
	t.outcomes = append([]domain.RunOutcome{out}, t.outcomes...)
	if len(t.outcomes) > historySize {
		t.outcomes = t.outcomes[:historySize]
	}
}

// Snapshot returns the current status
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	status := Status{State: string(t.state), Stage: string(t.stage)}
	if len(t.outcomes) > 0 {
		view := ViewOf(t.outcomes[0])
		status.LastRun = &view
	}
	if t.NextRun != nil {
		if next := t.NextRun(); !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

// Runs returns recent outcomes, newest first
func (t *Tracker) Runs() []RunView {
	t.mu.RLock()
	defer t.mu.RUnlock()

	views := make([]RunView, len(t.outcomes))
	for i, out := range t.outcomes {
		views[i] = ViewOf(out)
	}
	return views
}
