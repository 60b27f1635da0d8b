package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
)

type instrumentedSource struct {
	inner   TransferSource
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewInstrumentedSource records fetch latency and row counts for a source.
func NewInstrumentedSource(inner TransferSource, logger *slog.Logger, recorder *metrics.Recorder) TransferSource {
	return &instrumentedSource{inner: inner, logger: logger, metrics: recorder}
}

func (s *instrumentedSource) Name() string { return s.inner.Name() }

func (s *instrumentedSource) FetchTransfers(ctx context.Context) transfers.RecordSet {
	start := time.Now()
	set := s.inner.FetchTransfers(ctx)
	elapsed := time.Since(start)

	s.metrics.RecordSourceFetch(s.inner.Name(), set.Len(), elapsed)
	logWithProvider(ctx, s.logger, slog.LevelDebug, s.inner.Name(), "transfer source fetched",
		logging.FieldCount, set.Len(),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return set
}
