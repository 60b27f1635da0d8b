package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

func TestLoggingSetsRequestIDAndLogs(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if got := RequestIDFromContext(r.Context()); got == "" {
			t.Fatalf("expected request id in context")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	rr := testutil.Serve(Logging(logger, nil)(next), http.MethodGet, "/status", nil)

	if !nextCalled {
		t.Fatalf("expected next handler to be called")
	}
	testutil.AssertStatus(t, rr, http.StatusTeapot)
	if rr.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if !strings.Contains(buf.String(), "status_code=418") {
		t.Fatalf("expected status in log, got %s", buf.String())
	}
}

func TestLoggingWritesStructuredFields(t *testing.T) {
	logger, buf := testutil.NewJSONBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/runs/missing", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	testutil.ServeRequest(Logging(logger, nil)(next), req)

	entry := testutil.FindLog(t, buf, "request complete")
	if entry["request_id"] != "req-42" || entry["path"] != "/runs/missing" || entry["method"] != "GET" {
		t.Fatalf("unexpected request fields %v", entry)
	}
	if code, _ := entry["status_code"].(float64); code != http.StatusNotFound {
		t.Fatalf("expected status_code 404, got %v", entry["status_code"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Fatalf("expected duration_ms, got %v", entry)
	}
}

func TestLoggingKeepsValidIncomingRequestID(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rr := testutil.ServeRequest(Logging(logger, nil)(next), req)
	if got := rr.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Fatalf("expected pass-through id, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "bad id!")
	rr = testutil.ServeRequest(Logging(logger, nil)(next), req)
	if got := rr.Header().Get(HeaderRequestID); got == "bad id!" || got == "" {
		t.Fatalf("expected replaced id, got %q", got)
	}
}

func TestLoggingUnderRouterUsesRouteTemplate(t *testing.T) {
	rec, scrape := testutil.NewTelemetry(t)
	logger, buf := testutil.NewBufferLogger()

	var template string
	router := mux.NewRouter()
	router.Use(Logging(logger, rec))
	router.HandleFunc("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		template = routeTemplate(r)
	})

	rr := testutil.Serve(router, http.MethodGet, "/runs/1234", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if template != "/runs/{id}" {
		t.Fatalf("expected route template, got %q", template)
	}
	if !strings.Contains(buf.String(), "path=/runs/1234") {
		t.Fatalf("expected raw path in log, got %s", buf.String())
	}
	if body := testutil.Scrape(t, scrape); !strings.Contains(body, `path="/runs/{id}"`) || strings.Contains(body, "/runs/1234") {
		t.Fatalf("expected metrics labelled by route template, got %s", body)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	if got := clientIP(req); got != "1.2.3.4" {
		t.Fatalf("expected first forwarded address, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	if got := clientIP(req); got != "9.9.9.9:1234" {
		t.Fatalf("expected remote addr fallback, got %s", got)
	}
}

func TestResponseWriterDefaultsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rr, status: http.StatusOK}
	if _, err := ww.Write([]byte("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ww.status != http.StatusOK {
		t.Fatalf("expected default 200, got %d", ww.status)
	}
}

func TestRouteTemplateOutsideRouter(t *testing.T) {
	if got := routeTemplate(httptest.NewRequest(http.MethodGet, "/x", nil)); got != "unmatched" {
		t.Fatalf("expected unmatched, got %s", got)
	}
}
