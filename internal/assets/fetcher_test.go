package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

func TestFetchWritesBodyAndSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "logos", "Team_A_logo.png")
	f := NewFetcher(FetcherConfig{HTTPClient: srv.Client(), Attempts: 1, Delay: 0})

	if !f.Fetch(context.Background(), srv.URL+"/Team", dest) {
		t.Fatalf("expected success")
	}
	if got := testutil.ReadFile(t, dest); got != "png-bytes" {
		t.Fatalf("unexpected body %q", got)
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("expected user agent %q, got %q", defaultUserAgent, gotUA)
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "kit.png")
	f := NewFetcher(FetcherConfig{HTTPClient: srv.Client(), Attempts: 3, Delay: 0})
	if !f.Fetch(context.Background(), srv.URL, dest) {
		t.Fatalf("expected success on second attempt")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestFetchGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	logger, buf := testutil.NewBufferLogger()
	f := NewFetcher(FetcherConfig{HTTPClient: srv.Client(), Attempts: 3, Delay: 0, Logger: logger})
	if f.Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x.png")) {
		t.Fatalf("expected failure")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if !strings.Contains(buf.String(), "max_attempts=3") {
		t.Fatalf("expected attempt logging, got %s", buf.String())
	}
}

func TestFetchStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFetcher(FetcherConfig{Attempts: 3, Delay: 0})
	if f.Fetch(ctx, "http://127.0.0.1:1/unused", filepath.Join(t.TempDir(), "x.png")) {
		t.Fatalf("expected failure with canceled context")
	}
}
