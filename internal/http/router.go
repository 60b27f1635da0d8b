// Package http assembles the status server's routes.
package http

import (
	nethttp "net/http"

	"github.com/gorilla/mux"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/http/handlers"
)

// NewRouter registers the status routes. metrics may be nil when telemetry is off.
func NewRouter(h *handlers.Handler, metrics nethttp.Handler, mw ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw...)
	r.HandleFunc("/healthz", h.Health).Methods(nethttp.MethodGet)
	r.HandleFunc("/readyz", h.Ready).Methods(nethttp.MethodGet)
	r.HandleFunc("/status", h.Status).Methods(nethttp.MethodGet)
	r.HandleFunc("/runs", h.Runs).Methods(nethttp.MethodGet)
	r.HandleFunc("/runs/{id}", h.Run).Methods(nethttp.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(nethttp.MethodGet)
	}
	return r
}
