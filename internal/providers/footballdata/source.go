package footballdata

import (
	"context"
	"log/slog"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers"
)

// Source exposes a Client as a providers.TransferSource.
type Source struct {
	client *Client
	logger *slog.Logger
}

// NewSource wraps a client so failures become empty results.
func NewSource(client *Client, logger *slog.Logger) *Source {
	return &Source{client: client, logger: logger}
}

// Name returns the client name, including the competition code.
func (s *Source) Name() string { return s.client.Name() }

// FetchTransfers returns the upstream transfers or an empty set on failure.
func (s *Source) FetchTransfers(ctx context.Context) transfers.RecordSet {
	set, err := s.client.FetchTransfers(ctx)
	if err != nil {
		providers.LogFailure(ctx, s.logger, s.Name(), err)
		return transfers.RecordSet{}
	}
	return set
}

// NewSources builds one source per competition code, or a single global
// source when no codes are given.
func NewSources(cfg Config, competitions []string, logger *slog.Logger) []providers.TransferSource {
	if len(competitions) == 0 {
		return []providers.TransferSource{NewSource(NewClient(cfg), logger)}
	}
	out := make([]providers.TransferSource, 0, len(competitions))
	for _, code := range competitions {
		c := cfg
		c.Competition = code
		out = append(out, NewSource(NewClient(c), logger))
	}
	return out
}
