package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps a thread-safe journal of runs in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]Run),
	}
}

// StartRun opens a new run with a fresh id.
func (s *MemoryStore) StartRun(_ context.Context, startedAt time.Time) (Run, error) {
	run := Run{ID: uuid.NewString(), Status: StatusRunning, StartedAt: startedAt.UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return run.clone(), nil
}

// RecordStep appends a step to a run.
func (s *MemoryStore) RecordStep(_ context.Context, runID string, step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	run.Steps = append(run.Steps, step)
	s.runs[runID] = run
	return nil
}

// FinishRun closes a run; a nil runErr marks it succeeded.
func (s *MemoryStore) FinishRun(_ context.Context, runID string, finishedAt time.Time, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	run.Status = StepStatus(runErr)
	run.Error = errText(runErr)
	run.FinishedAt = finishedAt.UTC()
	s.runs[runID] = run
	return nil
}

// GetRun retrieves a run by ID.
func (s *MemoryStore) GetRun(_ context.Context, runID string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run.clone(), nil
}

// RecentRuns returns copies of the newest runs first.
func (s *MemoryStore) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		result = append(result, r.clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
