package metrics

import (
	"sync"
	"time"
)

type stepStats struct {
	attempts    int
	errors      int
	lastLatency time.Duration
}

type sourceStats struct {
	fetches      int
	emptyFetches int
	rows         int
	lastLatency  time.Duration
}

type assetStats struct {
	succeeded int
	failed    int
}

// Recorder captures lightweight, in-memory metrics about pipeline activity and
// forwards them to OpenTelemetry instruments when configured. A nil Recorder
// is valid and records nothing.
type Recorder struct {
	mu      sync.Mutex
	steps   map[string]*stepStats
	sources map[string]*sourceStats
	assets  map[string]*assetStats
	runs    RunSnapshot
	otel    *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		steps:   make(map[string]*stepStats),
		sources: make(map[string]*sourceStats),
		assets:  make(map[string]*assetStats),
		otel:    otel,
	}
}

// StepSnapshot is a copy of the counters for one pipeline step.
type StepSnapshot struct {
	Attempts    int
	Errors      int
	LastLatency time.Duration
}

// SourceSnapshot is a copy of the counters for one transfer source.
type SourceSnapshot struct {
	Fetches      int
	EmptyFetches int
	Rows         int
	LastLatency  time.Duration
}

// AssetSnapshot counts downloads of one asset kind.
type AssetSnapshot struct {
	Succeeded int
	Failed    int
}

// RunSnapshot counts full pipeline runs.
type RunSnapshot struct {
	Runs        int
	Failures    int
	LastLatency time.Duration
	LastMatched int
}

// RecordStepAttempt counts one attempt of a pipeline step.
func (r *Recorder) RecordStepAttempt(step string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats, ok := r.steps[step]
	if !ok {
		stats = &stepStats{}
		r.steps[step] = stats
	}
	stats.attempts++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	r.otel.recordStepAttempt(step, duration, err)
}

// RecordSourceFetch counts a transfer source call and the rows it produced.
func (r *Recorder) RecordSourceFetch(source string, rows int, duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats, ok := r.sources[source]
	if !ok {
		stats = &sourceStats{}
		r.sources[source] = stats
	}
	stats.fetches++
	stats.rows += rows
	stats.lastLatency = duration
	if rows == 0 {
		stats.emptyFetches++
	}
	r.mu.Unlock()

	r.otel.recordSourceFetch(source, rows, duration)
}

// RecordAssetDownload counts a finished download of the given kind (logo, kit).
func (r *Recorder) RecordAssetDownload(kind string, ok bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats, found := r.assets[kind]
	if !found {
		stats = &assetStats{}
		r.assets[kind] = stats
	}
	if ok {
		stats.succeeded++
	} else {
		stats.failed++
	}
	r.mu.Unlock()

	r.otel.recordAssetDownload(kind, ok)
}

// RecordDatabaseUpdate tracks how many store rows a transfer batch touched.
func (r *Recorder) RecordDatabaseUpdate(transfers, matched int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.runs.LastMatched = matched
	r.mu.Unlock()

	r.otel.recordDatabaseUpdate(transfers, matched)
}

// RecordPipelineRun counts a full pipeline run.
func (r *Recorder) RecordPipelineRun(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.runs.Runs++
	r.runs.LastLatency = duration
	if err != nil {
		r.runs.Failures++
	}
	r.mu.Unlock()

	r.otel.recordPipelineRun(duration, err)
}

// RecordHTTPRequest tracks basic HTTP metrics for the status server.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Step returns a copy of the stats for the step.
func (r *Recorder) Step(step string) StepSnapshot {
	if r == nil {
		return StepSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.steps[step]; ok {
		return StepSnapshot{Attempts: s.attempts, Errors: s.errors, LastLatency: s.lastLatency}
	}
	return StepSnapshot{}
}

// Source returns a copy of the stats for the transfer source.
func (r *Recorder) Source(source string) SourceSnapshot {
	if r == nil {
		return SourceSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[source]; ok {
		return SourceSnapshot{Fetches: s.fetches, EmptyFetches: s.emptyFetches, Rows: s.rows, LastLatency: s.lastLatency}
	}
	return SourceSnapshot{}
}

// Assets returns download counts for the asset kind.
func (r *Recorder) Assets(kind string) AssetSnapshot {
	if r == nil {
		return AssetSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.assets[kind]; ok {
		return AssetSnapshot{Succeeded: s.succeeded, Failed: s.failed}
	}
	return AssetSnapshot{}
}

// Runs returns pipeline run counters.
func (r *Recorder) Runs() RunSnapshot {
	if r == nil {
		return RunSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}
