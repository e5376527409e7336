package domain

import (
	"fmt"
	"time"
)

// RunOutcome records a single execution of the pipeline.
// It is reported to the caller and kept in memory only; nothing is persisted.
type RunOutcome struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Branch       string
	PRNumber     int
	PRURL        string
	FilesChanged int
	Stage        Stage // last stage entered
	Err          error
}

// Failed reports whether the run aborted before completing all stages
func (o RunOutcome) Failed() bool {
	return o.Err != nil
}

// Summary returns a one-line human-readable description of the outcome
func (o RunOutcome) Summary() string {
	if o.Failed() {
		return fmt.Sprintf("run %s failed at %s: %v", o.ID, o.Stage, o.Err)
	}
	return fmt.Sprintf("run %s merged PR #%d (%d files on %s)",
		o.ID, o.PRNumber, o.FilesChanged, o.Branch)
}

// PullRequest is the handle returned by the hosting API after submission
type PullRequest struct {
	Number int
	URL    string
	Head   string
	Base   string
}
