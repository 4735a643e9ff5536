/*
normalize.go - Raw sheet rows to typed records

PURPOSE:
  The log's physical form is a header row plus ordered string cells.
  The normalizer turns that into typed Records. It is a pure function:
  same header + rows in, same records out, no side effects.

FIELD LOOKUP:
  By declared header name, never by column position. Sheets accrete
  duplicate headers over revisions; duplicates are disambiguated by
  suffixing (Status, Status_2, ...) deterministically in left-to-right
  order of first occurrence. A later duplicate is authoritative only when
  the schema names it explicitly (configuration, not convention).

TIMESTAMPS:
  Parsed against a configured format list. A cell that matches none of
  them yields an absent OccurredAt - the record stays valid and is ordered
  by sequence alone. This replaces the old behavior where unparseable
  timestamps were coerced to NaT and silently mis-sorted the log.

FAILURES:
  A missing column is a SchemaError: fatal for the whole read.
  An unmatched enum or empty asset key is a MalformedRecordError: that one
  row is dropped, the rest of the log still normalizes.
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Schema names the header columns each logical field is read from and the
// timestamp formats the source is known to produce.
type Schema struct {
	Timestamp string
	DateOnly  string
	Actor     string
	AssetKey  string
	Category  string
	Direction string
	Condition string
	Comment   string

	TimestampFormats []string
}

// ToolsSchema is the schema of the equipment transactions sheet.
func ToolsSchema() Schema {
	return Schema{
		Timestamp: "DateTime",
		DateOnly:  "Date",
		Actor:     "User",
		AssetKey:  "Equipment_Selected",
		Category:  "Equipment",
		Direction: "Transaction",
		Condition: "Status",
		Comment:   "Comments",
		TimestampFormats: []string{
			"2006-01-02 15:04:05",
			"2006-01-02",
			time.RFC3339,
		},
	}
}

// Columns returns the header names the schema requires, in logical order.
// DateOnly is advisory and not required.
func (s Schema) Columns() []string {
	return []string{s.Timestamp, s.Actor, s.AssetKey, s.Category, s.Direction, s.Condition, s.Comment}
}

// Normalizer parses raw rows against a fixed schema.
type Normalizer struct {
	schema Schema
}

func NewNormalizer(schema Schema) *Normalizer {
	return &Normalizer{schema: schema}
}

// =============================================================================
// HEADER RESOLUTION
// =============================================================================

// headerIndex maps disambiguated header names to column positions.
type headerIndex struct {
	byName map[string]int
}

// resolveHeader disambiguates duplicates and checks every required column
// is present.
func (n *Normalizer) resolveHeader(header []string) (*headerIndex, error) {
	byName := make(map[string]int, len(header))
	seen := make(map[string]int, len(header))

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		seen[name]++
		if c := seen[name]; c > 1 {
			name = fmt.Sprintf("%s_%d", name, c)
		}
		byName[name] = i
	}

	var missing []string
	for _, col := range n.schema.Columns() {
		if _, ok := byName[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return &headerIndex{byName: byName}, nil
}

func (h *headerIndex) cell(row []string, column string) string {
	i, ok := h.byName[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// NormalizeAll parses every data row. Sequence is assigned from physical
// append order, starting at 1. Malformed rows are reported and skipped;
// a missing column aborts the whole read.
func (n *Normalizer) NormalizeAll(header []string, rows [][]string) ([]Record, []*MalformedRecordError, error) {
	idx, err := n.resolveHeader(header)
	if err != nil {
		return nil, nil, err
	}

	records := make([]Record, 0, len(rows))
	var malformed []*MalformedRecordError
	for i, row := range rows {
		rec, err := n.normalizeRow(idx, row, int64(i+1))
		if err != nil {
			var mErr *MalformedRecordError
			if errors.As(err, &mErr) {
				mErr.Row = i
				malformed = append(malformed, mErr)
				continue
			}
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return records, malformed, nil
}

// Normalize parses a single row with an explicit sequence. Exposed for
// callers that receive one appended row at a time.
func (n *Normalizer) Normalize(header []string, row []string, sequence int64) (Record, error) {
	idx, err := n.resolveHeader(header)
	if err != nil {
		return Record{}, err
	}
	return n.normalizeRow(idx, row, sequence)
}

func (n *Normalizer) normalizeRow(idx *headerIndex, row []string, sequence int64) (Record, error) {
	assetKey := idx.cell(row, n.schema.AssetKey)
	if assetKey == "" {
		return Record{}, &MalformedRecordError{Field: n.schema.AssetKey, Value: ""}
	}

	dirCell := idx.cell(row, n.schema.Direction)
	direction, ok := ParseDirection(dirCell)
	if !ok {
		return Record{}, &MalformedRecordError{Field: n.schema.Direction, Value: dirCell}
	}

	condCell := idx.cell(row, n.schema.Condition)
	condition, ok := ParseCondition(condCell)
	if !ok {
		return Record{}, &MalformedRecordError{Field: n.schema.Condition, Value: condCell}
	}

	return Record{
		AssetKey:   assetKey,
		Category:   idx.cell(row, n.schema.Category),
		Actor:      idx.cell(row, n.schema.Actor),
		Direction:  direction,
		Condition:  condition,
		Comment:    idx.cell(row, n.schema.Comment),
		OccurredAt: n.parseTimestamp(idx.cell(row, n.schema.Timestamp)),
		Sequence:   sequence,
	}, nil
}

// parseTimestamp tries each configured format in order. Failure is not an
// error: the record degrades to sequence-only ordering.
func (n *Normalizer) parseTimestamp(cell string) *time.Time {
	if cell == "" {
		return nil
	}
	for _, layout := range n.schema.TimestampFormats {
		if t, err := time.Parse(layout, cell); err == nil {
			return &t
		}
	}
	return nil
}
