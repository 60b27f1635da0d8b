package transfers

import (
	"strconv"
	"strings"
)

// Canonical field names of a processed transfer record set.
const (
	FieldPlayerName   = "player_name"
	FieldPreviousTeam = "previous_team"
	FieldNewTeam      = "new_team"
	FieldTransferDate = "transfer_date"
	FieldTransferFee  = "transfer_fee"
	FieldLeague       = "league"
	FieldPlayerID     = "player_id"
)

// CanonicalFields lists the canonical schema in display order.
var CanonicalFields = []string{
	FieldPlayerName,
	FieldPreviousTeam,
	FieldNewTeam,
	FieldTransferDate,
	FieldTransferFee,
	FieldLeague,
	FieldPlayerID,
}

// Record is a single player/team change event.
type Record struct {
	PlayerName   string   `json:"player_name"`
	PreviousTeam string   `json:"previous_team"`
	NewTeam      string   `json:"new_team"`
	TransferDate string   `json:"transfer_date"`
	TransferFee  *float64 `json:"transfer_fee,omitempty"`
	League       string   `json:"league,omitempty"`
	PlayerID     string   `json:"player_id,omitempty"`
}

// Key identifies a transfer for deduplication.
type Key struct {
	PlayerName   string
	PreviousTeam string
	NewTeam      string
}

// Key returns the uniqueness key of the record.
func (r Record) Key() Key {
	return Key{PlayerName: r.PlayerName, PreviousTeam: r.PreviousTeam, NewTeam: r.NewTeam}
}

// Row renders the record with canonical field names.
func (r Record) Row() Row {
	row := Row{
		FieldPlayerName:   r.PlayerName,
		FieldPreviousTeam: r.PreviousTeam,
		FieldNewTeam:      r.NewTeam,
		FieldTransferDate: r.TransferDate,
		FieldTransferFee:  FormatFee(r.TransferFee),
	}
	if r.League != "" {
		row[FieldLeague] = r.League
	}
	if r.PlayerID != "" {
		row[FieldPlayerID] = r.PlayerID
	}
	return row
}

// RecordFromRow reads a canonical row into a Record. Unparseable fees are dropped.
func RecordFromRow(row Row) Record {
	return Record{
		PlayerName:   row[FieldPlayerName],
		PreviousTeam: row[FieldPreviousTeam],
		NewTeam:      row[FieldNewTeam],
		TransferDate: row[FieldTransferDate],
		TransferFee:  ParseFee(row[FieldTransferFee]),
		League:       row[FieldLeague],
		PlayerID:     row[FieldPlayerID],
	}
}

// FormatFee renders a fee without exponent or trailing zeros; nil is empty.
func FormatFee(fee *float64) string {
	if fee == nil {
		return ""
	}
	return strconv.FormatFloat(*fee, 'f', -1, 64)
}

// ParseFee parses a fee cell, returning nil for blank or invalid values.
func ParseFee(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
