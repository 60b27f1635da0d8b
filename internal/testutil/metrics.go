package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
)

// NewTelemetry sets up an OTel-backed recorder with its own Prometheus
// registry and returns the /metrics handler. Shutdown runs at test cleanup.
func NewTelemetry(t *testing.T) (*metrics.Recorder, http.Handler) {
	t.Helper()
	rec, handler, shutdown, err := metrics.Setup(context.Background(), metrics.TelemetryConfig{
		Enabled:     true,
		ServiceName: "pes-updater-test",
	})
	if err != nil {
		t.Fatalf("metrics setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return rec, handler
}

// Scrape returns the Prometheus exposition served by handler.
func Scrape(t *testing.T, handler http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	AssertStatus(t, rr, http.StatusOK)
	return rr.Body.String()
}
