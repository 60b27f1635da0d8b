// Package store records pipeline runs and their steps so operators can see
// what the updater did and when.
package store

import (
	"context"
	"errors"
	"slices"
	"time"
)

// RunStatus is the outcome of a run or a step.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusSkipped   RunStatus = "skipped"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Step is one pipeline step inside a run.
type Step struct {
	Name       string    `json:"name"`
	Status     RunStatus `json:"status"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Run is one pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Steps      []Step    `json:"steps"`
}

// Duration is zero while the run is still going.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Run) clone() Run {
	r.Steps = slices.Clone(r.Steps)
	return r
}

// Journal persists runs. Implementations are safe for concurrent use.
type Journal interface {
	StartRun(ctx context.Context, startedAt time.Time) (Run, error)
	RecordStep(ctx context.Context, runID string, step Step) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, runErr error) error
	GetRun(ctx context.Context, runID string) (Run, error)
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// StepStatus maps a step error to a status.
func StepStatus(err error) RunStatus {
	if err != nil {
		return StatusFailed
	}
	return StatusSucceeded
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
