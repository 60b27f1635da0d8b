package transfers

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/csvtable"
	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/timeutil"
)

// Persisted column names of a transfer batch file.
const (
	ColumnPlayerName   = "player_name"
	ColumnFromTeam     = "from_team"
	ColumnToTeam       = "to_team"
	ColumnTransferDate = "transfer_date"
	ColumnTransferFee  = "transfer_fee"
	ColumnLeague       = "league"
	ColumnPlayerID     = "player_id"

	// BatchPattern matches batch files in the transfer data directory.
	BatchPattern = "transfers_*.csv"
)

// BatchFileName returns the batch name for a timestamp.
func BatchFileName(stamp string) string {
	return fmt.Sprintf("transfers_%s.csv", stamp)
}

// BatchTable renders a canonical record set with the persisted batch schema.
// league and player_id are only emitted when some row has them.
func BatchTable(set domaintransfers.RecordSet) *csvtable.Table {
	header := []string{ColumnPlayerName, ColumnFromTeam, ColumnToTeam, ColumnTransferDate, ColumnTransferFee}
	optional := map[string]string{
		ColumnLeague:   domaintransfers.FieldLeague,
		ColumnPlayerID: domaintransfers.FieldPlayerID,
	}
	for _, col := range []string{ColumnLeague, ColumnPlayerID} {
		for _, row := range set.Rows {
			if row[optional[col]] != "" {
				header = append(header, col)
				break
			}
		}
	}

	table := csvtable.New(header...)
	for _, row := range set.Rows {
		table.Append(map[string]string{
			ColumnPlayerName:   row[domaintransfers.FieldPlayerName],
			ColumnFromTeam:     row[domaintransfers.FieldPreviousTeam],
			ColumnToTeam:       row[domaintransfers.FieldNewTeam],
			ColumnTransferDate: row[domaintransfers.FieldTransferDate],
			ColumnTransferFee:  row[domaintransfers.FieldTransferFee],
			ColumnLeague:       row[domaintransfers.FieldLeague],
			ColumnPlayerID:     row[domaintransfers.FieldPlayerID],
		})
	}
	return table
}

// SaveBatch writes the set to a new timestamped batch file and returns its path.
func (p *Processor) SaveBatch(set domaintransfers.RecordSet) (string, error) {
	if p.dataDir == "" {
		return "", errors.New("transfer data directory not configured")
	}
	path := filepath.Join(p.dataDir, BatchFileName(timeutil.Stamp(p.now())))
	if err := BatchTable(set).Write(path); err != nil {
		return "", fmt.Errorf("save transfer batch: %w", err)
	}
	logging.Info(p.logger, "transfer batch saved", logging.FieldPath, path, logging.FieldCount, set.Len())
	return path, nil
}
