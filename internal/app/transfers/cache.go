package transfers

import (
	"context"
	"errors"

	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

var errNoCache = errors.New("transfer cache not configured")

// CacheTransfers writes the set to the named cache entry as a JSON array of objects.
func (p *Processor) CacheTransfers(set domaintransfers.RecordSet, filename string) error {
	if p.cache == nil {
		return errNoCache
	}
	if err := p.cache.Write(filename, set); err != nil {
		return err
	}
	logging.Info(p.logger, "transfers cached", logging.FieldPath, filename, logging.FieldCount, set.Len())
	return nil
}

// LoadCachedTransfers returns the cached set when the entry is younger than
// the cache TTL. Missing, stale or unreadable entries report false.
func (p *Processor) LoadCachedTransfers(filename string) (domaintransfers.RecordSet, bool) {
	if p.cache == nil {
		return domaintransfers.RecordSet{}, false
	}
	var set domaintransfers.RecordSet
	ok, err := p.cache.Load(filename, &set)
	if err != nil {
		logging.Warn(p.logger, "transfer cache unreadable, refetching", logging.FieldPath, filename, "error", err)
		return domaintransfers.RecordSet{}, false
	}
	if !ok {
		return domaintransfers.RecordSet{}, false
	}
	logging.Info(p.logger, "using cached transfers", logging.FieldPath, filename, logging.FieldCount, set.Len())
	return set, true
}

// FetchTransferData serves the cache when valid, otherwise fetches from the
// sources and replaces the cache entry with the fresh result.
func (p *Processor) FetchTransferData(ctx context.Context) domaintransfers.RecordSet {
	if set, ok := p.LoadCachedTransfers(p.cacheFile); ok {
		return set
	}
	set := p.FetchAndProcess(ctx, nil)
	if set.Empty() || p.cache == nil {
		return set
	}
	if err := p.CacheTransfers(set, p.cacheFile); err != nil {
		logging.Error(p.logger, "transfer cache write failed", err, logging.FieldPath, p.cacheFile)
	}
	return set
}
