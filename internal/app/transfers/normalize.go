package transfers

import (
	"strings"

	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
)

// fieldAliases maps source-specific field names to the canonical schema.
var fieldAliases = map[string]string{
	"player":    domaintransfers.FieldPlayerName,
	"name":      domaintransfers.FieldPlayerName,
	"from_team": domaintransfers.FieldPreviousTeam,
	"to_team":   domaintransfers.FieldNewTeam,
	"date":      domaintransfers.FieldTransferDate,
	"fee":       domaintransfers.FieldTransferFee,
}

var trimmedFields = []string{
	domaintransfers.FieldPlayerName,
	domaintransfers.FieldPreviousTeam,
	domaintransfers.FieldNewTeam,
}

func canonicalName(field string) string {
	if c, ok := fieldAliases[field]; ok {
		return c
	}
	return field
}

// rename rewrites field names to the canonical schema. When a row carries both
// an alias and the canonical field, the canonical value wins unless it is blank.
func rename(set domaintransfers.RecordSet) domaintransfers.RecordSet {
	out := domaintransfers.RecordSet{}
	for _, f := range set.Fields {
		c := canonicalName(f)
		if !out.Has(c) {
			out.Fields = append(out.Fields, c)
		}
	}
	for _, row := range set.Rows {
		renamed := make(domaintransfers.Row, len(row))
		for k, v := range row {
			c := canonicalName(k)
			if existing, ok := renamed[c]; ok {
				if c != k && existing != "" {
					continue
				}
				if c == k && v == "" {
					continue
				}
			}
			renamed[c] = v
		}
		out.Append(renamed)
	}
	return out
}

func trimNames(set domaintransfers.RecordSet) {
	for _, row := range set.Rows {
		for _, f := range trimmedFields {
			if v, ok := row[f]; ok {
				row[f] = strings.TrimSpace(v)
			}
		}
	}
}

// dedupe keeps the first row for each (player_name, previous_team, new_team).
func dedupe(set domaintransfers.RecordSet) domaintransfers.RecordSet {
	seen := make(map[domaintransfers.Key]struct{}, len(set.Rows))
	out := domaintransfers.RecordSet{Fields: set.Fields, Rows: make([]domaintransfers.Row, 0, len(set.Rows))}
	for _, row := range set.Rows {
		key := domaintransfers.Key{
			PlayerName:   row[domaintransfers.FieldPlayerName],
			PreviousTeam: row[domaintransfers.FieldPreviousTeam],
			NewTeam:      row[domaintransfers.FieldNewTeam],
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out
}
