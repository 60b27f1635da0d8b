package fixture

import (
	"context"
	"testing"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
)

func TestFetchTransfersReturnsDeterministicRows(t *testing.T) {
	src := New()
	set := src.FetchTransfers(context.Background())

	if src.Name() != "fixture" {
		t.Fatalf("unexpected name %s", src.Name())
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 fixture rows, got %d", set.Len())
	}
	if set.Rows[0]["player"] != "Lionel Messi" || set.Rows[0]["to_team"] != "Inter Miami" {
		t.Fatalf("unexpected first row %+v", set.Rows[0])
	}
	if !set.Has("from_team") || set.Has(transfers.FieldPreviousTeam) {
		t.Fatalf("expected source field names, got %v", set.Fields)
	}
}

func TestFetchTransfersReturnsCopies(t *testing.T) {
	src := NewWithRows(transfers.Row{"player": "A"})
	first := src.FetchTransfers(context.Background())
	first.Rows[0]["player"] = "mutated"

	second := src.FetchTransfers(context.Background())
	if second.Rows[0]["player"] != "A" {
		t.Fatalf("expected fixture rows to be isolated, got %+v", second.Rows[0])
	}
}
