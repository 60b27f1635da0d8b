package providers

import (
	"context"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
)

// TransferSource produces a tabular set of player transfers. Implementations
// never fail: any internal error is logged and an empty set is returned.
// Field names may be source-specific; the processor renames them.
type TransferSource interface {
	Name() string
	FetchTransfers(ctx context.Context) transfers.RecordSet
}

// FuncSource adapts a function into a TransferSource.
type FuncSource struct {
	SourceName string
	Fetch      func(ctx context.Context) transfers.RecordSet
}

// Name returns the configured source name.
func (f FuncSource) Name() string { return f.SourceName }

// FetchTransfers invokes the wrapped function; a nil function yields an empty set.
func (f FuncSource) FetchTransfers(ctx context.Context) transfers.RecordSet {
	if f.Fetch == nil {
		return transfers.RecordSet{}
	}
	return f.Fetch(ctx)
}
