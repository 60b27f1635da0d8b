package transfers

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers"
)

// Cache persists processed record sets between runs.
type Cache interface {
	Load(filename string, payload any) (bool, error)
	Write(filename string, payload any) error
}

// Config wires a Processor.
type Config struct {
	Sources   []providers.TransferSource
	Cache     Cache
	CacheFile string
	DataDir   string // where transfer batch CSVs are saved
	Logger    *slog.Logger
}

// Processor merges transfer sources into one normalized record set.
//
// FetchAndProcess results are memoized per argument for the lifetime of the
// Processor. That memo is separate from the on-disk cache, which has its own
// expiry and is only consulted by FetchTransferData.
type Processor struct {
	sources   []providers.TransferSource
	cache     Cache
	cacheFile string
	dataDir   string
	logger    *slog.Logger
	now       func() time.Time

	memoMu sync.Mutex
	memo   map[string]domaintransfers.RecordSet
}

// NewProcessor constructs a Processor.
func NewProcessor(cfg Config) *Processor {
	return &Processor{
		sources:   cfg.Sources,
		cache:     cfg.Cache,
		cacheFile: cfg.CacheFile,
		dataDir:   cfg.DataDir,
		logger:    cfg.Logger,
		now:       time.Now,
		memo:      make(map[string]domaintransfers.RecordSet),
	}
}

// FetchAndProcess queries every source, keeps the non-empty results, renames
// fields to the canonical schema, trims name fields, drops duplicate
// (player_name, previous_team, new_team) rows and, when preferredFields is
// non-empty, projects onto the fields that are both requested and present.
func (p *Processor) FetchAndProcess(ctx context.Context, preferredFields []string) domaintransfers.RecordSet {
	key := memoKey(preferredFields)

	p.memoMu.Lock()
	defer p.memoMu.Unlock()
	if cached, ok := p.memo[key]; ok {
		return cached.Clone()
	}

	start := time.Now()
	parts := make([]domaintransfers.RecordSet, 0, len(p.sources))
	for _, src := range p.sources {
		set := src.FetchTransfers(ctx)
		if set.Empty() {
			logging.Warn(p.logger, "transfer source returned no data", logging.FieldProvider, src.Name())
			continue
		}
		parts = append(parts, rename(set))
	}

	merged := domaintransfers.Concat(parts...)
	trimNames(merged)
	result := dedupe(merged)
	if len(preferredFields) > 0 {
		result = result.Project(preferredFields)
	}

	logging.Info(p.logger, "transfers processed",
		logging.FieldCount, result.Len(),
		"sources", len(p.sources),
		"duplicates", merged.Len()-result.Len(),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	p.memo[key] = result
	return result.Clone()
}

// memoKey distinguishes argument values; nil and empty mean "no projection".
func memoKey(fields []string) string {
	if len(fields) == 0 {
		return "*"
	}
	return "fields:" + strings.Join(fields, "\x1f")
}
