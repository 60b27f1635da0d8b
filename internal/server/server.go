// Package server runs schedule mode: the pipeline on an interval plus a small
// status server.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/config"
	httpserver "github.com/GOLDENPLIX/pes-2013-updater/internal/http"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/http/handlers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/http/middleware"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/schedule"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
)

var metricsSetup = metrics.Setup

// Deps are the components the server wraps. Journal and MetricsHandler may be nil.
type Deps struct {
	Scheduler      Scheduler
	Journal        store.Journal
	Recorder       *metrics.Recorder
	MetricsHandler http.Handler
	MetricsStop    func(context.Context) error
}

type Server struct {
	cfg         config.Config
	logger      *slog.Logger
	scheduler   Scheduler
	httpServer  httpServer
	metricsStop func(context.Context) error
}

// New constructs a server listening on cfg.Schedule.StatusPort.
func New(cfg config.Config, logger *slog.Logger, deps Deps) *Server {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	var statusFn func() schedule.Status
	if deps.Scheduler != nil {
		statusFn = deps.Scheduler.Status
	}
	handler := handlers.NewHandler(deps.Journal, deps.Recorder, logger, statusFn)
	router := httpserver.NewRouter(handler, deps.MetricsHandler, middleware.Logging(logger, deps.Recorder))

	return newServerWithDeps(cfg, logger, newStatusServer(cfg.Schedule.StatusPort, router), deps.Scheduler, deps.MetricsStop)
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, sched Scheduler, metricsStop func(context.Context) error) *Server {
	return &Server{
		cfg:         cfg,
		logger:      logger,
		scheduler:   sched,
		httpServer:  httpSrv,
		metricsStop: metricsStop,
	}
}

// Run starts the status server and the schedule, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startServer(stop)
	if s.scheduler != nil {
		if err := s.scheduler.Start(ctx); err != nil {
			logging.Error(s.logger, "schedule failed to start", err)
			if stop != nil {
				stop()
			}
		}
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "status server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("status", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.scheduler != nil {
		if err := s.scheduler.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop schedule", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

// SetupMetrics builds the recorder shared by the pipeline and the status
// server. Telemetry failures fall back to an in-memory recorder.
func SetupMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger) (*metrics.Recorder, http.Handler, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(ctx, recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}
	return rec, handler, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
