package fixture

import (
	"context"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
)

const providerName = "fixture"

// Source returns a static set of transfers, useful offline and in tests.
type Source struct {
	rows []transfers.Row
}

// New creates a fixture source with the built-in transfers.
func New() *Source {
	return &Source{rows: defaultRows()}
}

// NewWithRows creates a fixture source serving the given rows.
func NewWithRows(rows ...transfers.Row) *Source {
	return &Source{rows: rows}
}

// Name identifies the source.
func (s *Source) Name() string { return providerName }

// FetchTransfers returns a copy of the fixed record set.
func (s *Source) FetchTransfers(ctx context.Context) transfers.RecordSet {
	_ = ctx
	set := transfers.NewRecordSet("player", "from_team", "to_team", "transfer_date")
	for _, row := range s.rows {
		cp := make(transfers.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		set.Append(cp)
	}
	return set
}

func defaultRows() []transfers.Row {
	return []transfers.Row{
		{"player": "Lionel Messi", "from_team": "PSG", "to_team": "Inter Miami", "transfer_date": "2023-07-15"},
		{"player": "Cristiano Ronaldo", "from_team": "Al Nassr", "to_team": "Al Nassr", "transfer_date": "2023-01-22"},
		{"player": "Kylian Mbappé", "from_team": "PSG", "to_team": "Real Madrid", "transfer_date": "2024-01-01"},
	}
}
