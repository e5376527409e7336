package domain

import (
	"fmt"
	"strings"
)

// ConfigError reports an invalid configuration value. It is only produced
// during startup; a running process never sees one.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// VCSError reports a failed local version-control command
type VCSError struct {
	Args   []string
	Output string
	Err    error
}

func (e *VCSError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), out)
}

func (e *VCSError) Unwrap() error { return e.Err }

// HostError reports a rejected hosting-API call
type HostError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *HostError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, strings.TrimSpace(e.Body))
}

func (e *HostError) Unwrap() error { return e.Err }

// FSError reports an I/O failure on a working-tree file
type FSError struct {
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FSError) Unwrap() error { return e.Err }

// StageError wraps the cause of a run abort with the stage it occurred in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
