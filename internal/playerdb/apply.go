package playerdb

import (
	apptransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/app/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/csvtable"
)

// Player store columns.
const (
	ColumnName         = "name"
	ColumnTeam         = "team"
	ColumnTransferDate = "transfer_date"
	ColumnTransferFee  = "transfer_fee"
)

// ErrMissingColumn is returned when the store or a batch lacks a required column.
var ErrMissingColumn = csvtable.ErrMissingColumn

var batchColumns = []string{apptransfers.ColumnPlayerName, apptransfers.ColumnFromTeam, apptransfers.ColumnToTeam}

type playerKey struct {
	name string
	team string
}

// Apply writes each batch transfer onto the store rows whose original
// (name, team) equals the transfer's (player_name, from_team). Matching rows
// get team, transfer_date and transfer_fee overwritten; those columns are
// added to the store header when absent. Transfers without a match are
// ignored. The row count never changes. It returns the number of store rows
// updated.
func Apply(store, batch *csvtable.Table) (int, error) {
	if err := store.Require(ColumnName, ColumnTeam); err != nil {
		return 0, err
	}
	if err := batch.Require(batchColumns...); err != nil {
		return 0, err
	}

	// Index on the values read from disk so a row moved by one transfer is
	// not matched again by a later transfer from its new team.
	index := make(map[playerKey][]int, store.Len())
	for i := range store.Rows {
		k := playerKey{store.Get(i, ColumnName), store.Get(i, ColumnTeam)}
		index[k] = append(index[k], i)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	store.EnsureColumn(ColumnTransferDate)
	store.EnsureColumn(ColumnTransferFee)

	updated := make(map[int]struct{})
	for j := range batch.Rows {
		k := playerKey{batch.Get(j, apptransfers.ColumnPlayerName), batch.Get(j, apptransfers.ColumnFromTeam)}
		rows, ok := index[k]
		if !ok {
			continue
		}
		for _, i := range rows {
			store.Set(i, ColumnTeam, batch.Get(j, apptransfers.ColumnToTeam))
			store.Set(i, ColumnTransferDate, batch.Get(j, apptransfers.ColumnTransferDate))
			store.Set(i, ColumnTransferFee, batch.Get(j, apptransfers.ColumnTransferFee))
			updated[i] = struct{}{}
		}
	}
	return len(updated), nil
}
