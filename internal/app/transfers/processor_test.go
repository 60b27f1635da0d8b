package transfers

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/cache"
	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/teststubs"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

func TestFetchAndProcessDedupesAcrossSourcesAfterTrimming(t *testing.T) {
	a := &teststubs.StubSource{SourceName: "a", Set: teststubs.TransferSet(
		[4]string{"John Doe", "Old Team", "New Team", "2024-01-01"},
		[4]string{"Jane Roe", "Club A", "Club B", "2024-02-01"},
	)}
	b := &teststubs.StubSource{SourceName: "b", Set: teststubs.TransferSet(
		[4]string{"  John Doe ", " Old Team", "New Team  ", "2024-01-01"},
		[4]string{"Jane Roe", "Club A", "Club C", "2024-03-01"},
	)}
	p := NewProcessor(Config{Sources: []providers.TransferSource{a, b}})

	got := p.FetchAndProcess(context.Background(), nil)
	if got.Len() != 3 {
		t.Fatalf("expected 3 unique transfers, got %d: %+v", got.Len(), got.Rows)
	}
	seen := map[domaintransfers.Key]int{}
	for _, r := range got.Records() {
		seen[r.Key()]++
	}
	if seen[domaintransfers.Key{PlayerName: "John Doe", PreviousTeam: "Old Team", NewTeam: "New Team"}] != 1 {
		t.Fatalf("expected John Doe exactly once, got %v", seen)
	}
	for _, f := range []string{domaintransfers.FieldPlayerName, domaintransfers.FieldPreviousTeam, domaintransfers.FieldNewTeam} {
		if !got.Has(f) {
			t.Fatalf("expected canonical field %s in %v", f, got.Fields)
		}
	}
	if got.Has("player") || got.Has("from_team") {
		t.Fatalf("expected source field names to be renamed, got %v", got.Fields)
	}
}

func TestFetchAndProcessSkipsEmptySources(t *testing.T) {
	empty := &teststubs.StubSource{SourceName: "down"}
	full := &teststubs.StubSource{SourceName: "up", Set: teststubs.TransferSet([4]string{"A", "X", "Y", "2024-01-01"})}
	logger, buf := testutil.NewBufferLogger()
	p := NewProcessor(Config{Sources: []providers.TransferSource{empty, full}, Logger: logger})

	if got := p.FetchAndProcess(context.Background(), nil); got.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", got.Len())
	}
	if !strings.Contains(buf.String(), "provider=down") {
		t.Fatalf("expected warning for empty source, got %s", buf.String())
	}
}

func TestFetchAndProcessProjectsToAvailableFields(t *testing.T) {
	src := &teststubs.StubSource{Set: teststubs.TransferSet([4]string{"A", "X", "Y", "2024-01-01"})}
	p := NewProcessor(Config{Sources: []providers.TransferSource{src}})

	got := p.FetchAndProcess(context.Background(), []string{domaintransfers.FieldNewTeam, "market_value", domaintransfers.FieldPlayerName})
	if !reflect.DeepEqual(got.Fields, []string{domaintransfers.FieldNewTeam, domaintransfers.FieldPlayerName}) {
		t.Fatalf("unexpected projected fields %v", got.Fields)
	}
	if len(got.Rows[0]) != 2 {
		t.Fatalf("expected projected row, got %+v", got.Rows[0])
	}
}

func TestFetchAndProcessMemoizesPerArgument(t *testing.T) {
	src := &teststubs.StubSource{Set: teststubs.TransferSet([4]string{"A", "X", "Y", "2024-01-01"})}
	p := NewProcessor(Config{Sources: []providers.TransferSource{src}})
	ctx := context.Background()

	first := p.FetchAndProcess(ctx, nil)
	first.Rows[0][domaintransfers.FieldPlayerName] = "mutated"
	second := p.FetchAndProcess(ctx, []string{})
	if src.Calls.Load() != 1 {
		t.Fatalf("expected memoized result for equal arguments, got %d fetches", src.Calls.Load())
	}
	if second.Rows[0][domaintransfers.FieldPlayerName] != "A" {
		t.Fatal("expected memoized value to be isolated from callers")
	}

	p.FetchAndProcess(ctx, []string{domaintransfers.FieldPlayerName})
	p.FetchAndProcess(ctx, []string{domaintransfers.FieldPlayerName})
	if src.Calls.Load() != 2 {
		t.Fatalf("expected one fetch per distinct argument, got %d", src.Calls.Load())
	}
}

func TestRenamePrefersCanonicalValues(t *testing.T) {
	set := domaintransfers.NewRecordSet("player", domaintransfers.FieldPlayerName)
	set.Append(domaintransfers.Row{"player": "alias", domaintransfers.FieldPlayerName: "canonical"})
	set.Append(domaintransfers.Row{"player": "alias", domaintransfers.FieldPlayerName: ""})

	out := rename(set)
	if out.Rows[0][domaintransfers.FieldPlayerName] != "canonical" {
		t.Fatalf("expected canonical value to win, got %+v", out.Rows[0])
	}
	if out.Rows[1][domaintransfers.FieldPlayerName] != "alias" {
		t.Fatalf("expected alias to fill blank canonical value, got %+v", out.Rows[1])
	}
	if !reflect.DeepEqual(out.Fields, []string{domaintransfers.FieldPlayerName}) {
		t.Fatalf("expected single canonical field, got %v", out.Fields)
	}
}

func TestLoadCachedTransfersHonorsAge(t *testing.T) {
	dir := t.TempDir()
	store := cache.NewFSStore(dir, 24*time.Hour)
	p := NewProcessor(Config{Cache: store})
	set := domaintransfers.FromRecords([]domaintransfers.Record{{PlayerName: "A", PreviousTeam: "X", NewTeam: "Y", TransferDate: "2024-01-01"}})

	if err := p.CacheTransfers(set, "transfers.json"); err != nil {
		t.Fatalf("cache: %v", err)
	}
	got, ok := p.LoadCachedTransfers("transfers.json")
	if !ok || got.Len() != 1 || got.Rows[0][domaintransfers.FieldPlayerName] != "A" {
		t.Fatalf("expected fresh cache hit, got ok=%v set=%+v", ok, got)
	}

	old := time.Now().Add(-25 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "transfers.json"), old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, ok := p.LoadCachedTransfers("transfers.json"); ok {
		t.Fatal("expected stale cache to be ignored")
	}
}

func TestCacheFileIsArrayOfObjects(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(Config{Cache: cache.NewFSStore(dir, 0)})
	set := domaintransfers.FromRecords([]domaintransfers.Record{{PlayerName: "A", PreviousTeam: "X", NewTeam: "Y", TransferDate: "2024-01-01"}})
	if err := p.CacheTransfers(set, "transfers.json"); err != nil {
		t.Fatalf("cache: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "transfers.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") || !strings.Contains(trimmed, `"player_name": "A"`) {
		t.Fatalf("unexpected cache content %s", trimmed)
	}
}

func TestFetchTransferDataUsesCacheThenSources(t *testing.T) {
	src := &teststubs.StubSource{Set: teststubs.TransferSet([4]string{"A", "X", "Y", "2024-01-01"})}
	stub := &teststubs.StubCache{}
	p := NewProcessor(Config{Sources: []providers.TransferSource{src}, Cache: stub, CacheFile: "transfers.json"})

	first := p.FetchTransferData(context.Background())
	if first.Len() != 1 || stub.Writes != 1 {
		t.Fatalf("expected fetch and cache write, got len=%d writes=%d", first.Len(), stub.Writes)
	}

	fresh := NewProcessor(Config{Sources: []providers.TransferSource{src}, Cache: stub, CacheFile: "transfers.json"})
	if got := fresh.FetchTransferData(context.Background()); got.Len() != 1 {
		t.Fatalf("expected cached data, got %d rows", got.Len())
	}
	if src.Calls.Load() != 1 {
		t.Fatalf("expected cache hit to skip sources, got %d calls", src.Calls.Load())
	}
}

func TestFetchTransferDataDoesNotCacheEmptyResults(t *testing.T) {
	stub := &teststubs.StubCache{}
	p := NewProcessor(Config{Sources: []providers.TransferSource{&teststubs.StubSource{}}, Cache: stub, CacheFile: "transfers.json"})
	if got := p.FetchTransferData(context.Background()); !got.Empty() {
		t.Fatalf("expected empty set, got %+v", got)
	}
	if stub.Writes != 0 {
		t.Fatalf("expected no cache write for empty data, got %d", stub.Writes)
	}
}

func TestCacheTransfersWithoutCache(t *testing.T) {
	p := NewProcessor(Config{})
	if err := p.CacheTransfers(domaintransfers.RecordSet{}, "x.json"); err == nil {
		t.Fatal("expected error without cache")
	}
	if _, ok := p.LoadCachedTransfers("x.json"); ok {
		t.Fatal("expected miss without cache")
	}
}
