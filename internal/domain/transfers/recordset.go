package transfers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Row is one record of a tabular set, keyed by field name.
type Row map[string]string

// RecordSet is an ordered tabular set of transfer rows. Field names are
// whatever the producer used until the processor renames them.
type RecordSet struct {
	Fields []string
	Rows   []Row
}

// NewRecordSet returns an empty set with the given columns.
func NewRecordSet(fields ...string) RecordSet {
	return RecordSet{Fields: slices.Clone(fields)}
}

// FromRecords builds a canonical set from typed records.
func FromRecords(records []Record) RecordSet {
	set := NewRecordSet(FieldPlayerName, FieldPreviousTeam, FieldNewTeam, FieldTransferDate, FieldTransferFee)
	for _, r := range records {
		set.Append(r.Row())
	}
	return set
}

// Len returns the row count.
func (s RecordSet) Len() int { return len(s.Rows) }

// Empty reports whether the set has no rows.
func (s RecordSet) Empty() bool { return len(s.Rows) == 0 }

// Has reports whether the set carries the named field.
func (s RecordSet) Has(field string) bool {
	return slices.Contains(s.Fields, field)
}

// Append adds a row, registering any fields the set has not seen yet.
func (s *RecordSet) Append(row Row) {
	extra := make([]string, 0)
	for k := range row {
		if !s.Has(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	s.Fields = append(s.Fields, extra...)
	s.Rows = append(s.Rows, row)
}

// Concat joins sets in order. Fields keep first-seen order.
func Concat(sets ...RecordSet) RecordSet {
	var out RecordSet
	for _, set := range sets {
		for _, f := range set.Fields {
			if !out.Has(f) {
				out.Fields = append(out.Fields, f)
			}
		}
		for _, row := range set.Rows {
			out.Append(row.clone())
		}
	}
	return out
}

// Project keeps the requested fields that the set actually has, in the
// requested order.
func (s RecordSet) Project(fields []string) RecordSet {
	keep := make([]string, 0, len(fields))
	for _, f := range fields {
		if s.Has(f) && !slices.Contains(keep, f) {
			keep = append(keep, f)
		}
	}
	out := RecordSet{Fields: keep, Rows: make([]Row, 0, len(s.Rows))}
	for _, row := range s.Rows {
		projected := make(Row, len(keep))
		for _, f := range keep {
			if v, ok := row[f]; ok {
				projected[f] = v
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// Records converts canonical rows into typed records.
func (s RecordSet) Records() []Record {
	out := make([]Record, 0, len(s.Rows))
	for _, row := range s.Rows {
		out = append(out, RecordFromRow(row))
	}
	return out
}

// Clone deep-copies the set so callers can mutate it freely.
func (s RecordSet) Clone() RecordSet {
	out := RecordSet{Fields: slices.Clone(s.Fields), Rows: make([]Row, 0, len(s.Rows))}
	for _, row := range s.Rows {
		out.Rows = append(out.Rows, row.clone())
	}
	return out
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the set as an array of field/value objects.
func (s RecordSet) MarshalJSON() ([]byte, error) {
	rows := s.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes an array of objects. Non-string scalars are kept in
// their JSON text form; null becomes an empty cell.
func (s *RecordSet) UnmarshalJSON(data []byte) error {
	var raw []map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := RecordSet{}
	for i, obj := range raw {
		row := make(Row, len(obj))
		for k, v := range obj {
			cell, err := decodeCell(v)
			if err != nil {
				return fmt.Errorf("row %d field %s: %w", i, k, err)
			}
			row[k] = cell
		}
		out.Append(row)
	}
	out.Fields = orderFields(out.Fields)
	*s = out
	return nil
}

func decodeCell(v json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return "", fmt.Errorf("nested values are not supported")
	}
	return string(trimmed), nil
}

// orderFields puts canonical fields first, then the rest alphabetically.
func orderFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range CanonicalFields {
		if slices.Contains(fields, f) {
			out = append(out, f)
		}
	}
	var rest []string
	for _, f := range fields {
		if !slices.Contains(CanonicalFields, f) {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
