// Package handlers serves the status endpoints of schedule mode.
package handlers

import (
	"errors"
	"log/slog"
	nethttp "net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/schedule"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// Handler exposes schedule health, counters and the run journal.
type Handler struct {
	journal  store.Journal
	recorder *metrics.Recorder
	logger   *slog.Logger
	statusFn func() schedule.Status
}

// NewHandler constructs a Handler. journal, recorder and statusFn may be nil.
func NewHandler(journal store.Journal, recorder *metrics.Recorder, logger *slog.Logger, statusFn func() schedule.Status) *Handler {
	return &Handler{
		journal:  journal,
		recorder: recorder,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports that the process is up.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether scheduled runs are succeeding.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	st := h.statusFn()
	if st.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := st.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// RunCounters is the JSON view of metrics.RunSnapshot.
type RunCounters struct {
	Total         int   `json:"total"`
	Failures      int   `json:"failures"`
	LastLatencyMS int64 `json:"last_latency_ms"`
	LastMatched   int   `json:"last_matched"`
}

// StatusResponse is the body of /status.
type StatusResponse struct {
	Schedule *schedule.Status `json:"schedule,omitempty"`
	Runs     RunCounters      `json:"runs"`
	LastRun  *store.Run       `json:"last_run,omitempty"`
}

// Status summarizes the schedule, the run counters and the latest journaled run.
func (h *Handler) Status(w nethttp.ResponseWriter, r *nethttp.Request) {
	snap := h.recorder.Runs()
	resp := StatusResponse{
		Runs: RunCounters{
			Total:         snap.Runs,
			Failures:      snap.Failures,
			LastLatencyMS: snap.LastLatency.Milliseconds(),
			LastMatched:   snap.LastMatched,
		},
	}
	if h.statusFn != nil {
		st := h.statusFn()
		resp.Schedule = &st
	}
	if h.journal != nil {
		runs, err := h.journal.RecentRuns(r.Context(), 1)
		if err != nil {
			logging.Warn(loggerFromContext(r, h.logger), "run journal unavailable", "error", err)
		} else if len(runs) > 0 {
			resp.LastRun = &runs[0]
		}
	}
	writeJSON(w, nethttp.StatusOK, resp, h.logger)
}

// RunsResponse is the body of /runs.
type RunsResponse struct {
	Runs []RunSummary `json:"runs"`
}

// RunSummary is a journaled run with its duration.
type RunSummary struct {
	store.Run
	DurationMS int64 `json:"duration_ms"`
}

// Runs lists recent runs, newest first. ?limit= caps the count.
func (h *Handler) Runs(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.journal == nil {
		writeError(w, r, nethttp.StatusNotFound, "run journal disabled", h.logger)
		return
	}
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, nethttp.StatusBadRequest, "limit must be a positive integer", h.logger)
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.journal.RecentRuns(r.Context(), limit)
	if err != nil {
		logging.Error(loggerFromContext(r, h.logger), "list runs failed", err)
		writeError(w, r, nethttp.StatusInternalServerError, "run journal unavailable", h.logger)
		return
	}
	resp := RunsResponse{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, summarize(run))
	}
	writeJSON(w, nethttp.StatusOK, resp, h.logger)
}

// Run returns one run with its steps.
func (h *Handler) Run(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.journal == nil {
		writeError(w, r, nethttp.StatusNotFound, "run journal disabled", h.logger)
		return
	}
	id := mux.Vars(r)["id"]
	run, err := h.journal.GetRun(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		writeError(w, r, nethttp.StatusNotFound, "run not found", h.logger)
		return
	case err != nil:
		logging.Error(loggerFromContext(r, h.logger), "get run failed", err, logging.FieldRunID, id)
		writeError(w, r, nethttp.StatusInternalServerError, "run journal unavailable", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, summarize(run), h.logger)
}

func summarize(run store.Run) RunSummary {
	return RunSummary{Run: run, DurationMS: run.Duration().Milliseconds()}
}
