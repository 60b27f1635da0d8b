package teststubs

import (
	"context"
	"sync/atomic"

	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
)

// StubSource is a test double for providers.TransferSource.
type StubSource struct {
	SourceName string
	Set        domaintransfers.RecordSet
	Calls      atomic.Int32
	Notify     chan struct{}
}

// Name returns the configured name, defaulting to "stub".
func (s *StubSource) Name() string {
	if s.SourceName == "" {
		return "stub"
	}
	return s.SourceName
}

// FetchTransfers returns a copy of the configured set while tracking calls.
func (s *StubSource) FetchTransfers(ctx context.Context) domaintransfers.RecordSet {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return s.Set.Clone()
}

// StubCache is an in-memory test double for the transfer cache.
type StubCache struct {
	Entries  map[string]domaintransfers.RecordSet
	Stale    bool
	LoadErr  error
	WriteErr error
	Writes   int
}

// Load returns a stored entry unless the stub is marked stale.
func (c *StubCache) Load(filename string, payload any) (bool, error) {
	if c.LoadErr != nil {
		return false, c.LoadErr
	}
	set, ok := c.Entries[filename]
	if !ok || c.Stale {
		return false, nil
	}
	if dst, ok := payload.(*domaintransfers.RecordSet); ok {
		*dst = set.Clone()
	}
	return true, nil
}

// Write records the entry.
func (c *StubCache) Write(filename string, payload any) error {
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Writes++
	if c.Entries == nil {
		c.Entries = make(map[string]domaintransfers.RecordSet)
	}
	if set, ok := payload.(domaintransfers.RecordSet); ok {
		c.Entries[filename] = set.Clone()
	}
	return nil
}

// TransferSet builds a set with source-style field names
// (player, from_team, to_team, transfer_date) from 4-tuples.
func TransferSet(rows ...[4]string) domaintransfers.RecordSet {
	set := domaintransfers.NewRecordSet("player", "from_team", "to_team", "transfer_date")
	for _, r := range rows {
		set.Append(domaintransfers.Row{"player": r[0], "from_team": r[1], "to_team": r[2], "transfer_date": r[3]})
	}
	return set
}
