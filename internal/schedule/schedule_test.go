package schedule

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

func TestStartRunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New(func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected an immediate run")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if st := s.Status(); st.Runs == 1 && !st.Running {
			if !st.IsReady() || st.NextRun.IsZero() {
				t.Fatalf("unexpected status %+v", st)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("status never reflected the run: %+v", s.Status())
}

func TestStartIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	s := New(func(context.Context) error { calls.Add(1); return nil }, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	_ = s.Stop(context.Background())
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single run, got %d", got)
	}
}

func TestRunOnceTracksFailures(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	fail := true
	s := New(func(context.Context) error {
		if fail {
			return errors.New("football-data down")
		}
		return nil
	}, logger, time.Hour)
	s.now = testutil.NowAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	for range 3 {
		s.RunOnce(context.Background())
	}
	st := s.Status()
	if st.ConsecutiveFailures != 3 || st.LastError != "football-data down" || st.IsReady() {
		t.Fatalf("unexpected status %+v", st)
	}
	if !strings.Contains(buf.String(), "scheduled update failed") {
		t.Fatalf("expected failure log, got %s", buf.String())
	}

	fail = false
	s.RunOnce(context.Background())
	st = s.Status()
	if st.ConsecutiveFailures != 0 || st.LastError != "" || !st.IsReady() || st.Runs != 4 {
		t.Fatalf("expected recovery, got %+v", st)
	}
}

func TestRunOnceRecoversPanics(t *testing.T) {
	s := New(func(context.Context) error { panic("boom") }, nil, 0)
	s.RunOnce(context.Background())
	if st := s.Status(); st.ConsecutiveFailures != 1 || st.LastError != "update panicked" {
		t.Fatalf("unexpected status %+v", st)
	}
	if s.interval != defaultInterval {
		t.Fatalf("expected default interval, got %v", s.interval)
	}
}

func TestStopBeforeStart(t *testing.T) {
	s := New(func(context.Context) error { return nil }, nil, time.Minute)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
