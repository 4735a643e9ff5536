package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symeon158/Equipment-Inspection/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func toolsHeader() []string {
	return []string{"DateTime", "Date", "User", "Equipment", "Equipment_Selected", "Transaction", "Status", "Comments"}
}

func row(dateTime, date, user, equipment, selected, transaction, status, comments string) []string {
	return []string{dateTime, date, user, equipment, selected, transaction, status, comments}
}

// =============================================================================
// HEADER RESOLUTION
// =============================================================================

func TestNormalizer_MissingColumn_SchemaError(t *testing.T) {
	// GIVEN: A header without the Status column
	// WHEN: Normalizing any rows
	// THEN: The whole read fails with a SchemaError naming the column

	n := ledger.NewNormalizer(ledger.ToolsSchema())
	header := []string{"DateTime", "Date", "User", "Equipment", "Equipment_Selected", "Transaction", "Comments"}

	_, _, err := n.NormalizeAll(header, [][]string{})

	require.Error(t, err)
	var schemaErr *ledger.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Status"}, schemaErr.Missing)
}

func TestNormalizer_DuplicateHeaders_SuffixedDeterministically(t *testing.T) {
	// GIVEN: A sheet that accreted a second Status column over revisions
	// WHEN: The schema names the plain "Status" column
	// THEN: The first occurrence is read; the duplicate is addressable as Status_2

	n := ledger.NewNormalizer(ledger.ToolsSchema())
	header := []string{"DateTime", "Date", "User", "Equipment", "Equipment_Selected", "Transaction", "Status", "Comments", "Status"}
	rows := [][]string{
		append(row("2024-03-01 10:00:00", "2024-03-01", "alex", "Drills", "Makita_Drill", "Check In", "Checked", ""), "Broken Down"),
	}

	records, malformed, err := n.NormalizeAll(header, rows)
	require.NoError(t, err)
	require.Empty(t, malformed)
	require.Len(t, records, 1)
	assert.Equal(t, ledger.Checked, records[0].Condition, "first Status column is authoritative by default")

	// An explicitly configured schema can designate the later duplicate.
	schema := ledger.ToolsSchema()
	schema.Condition = "Status_2"
	records, _, err = ledger.NewNormalizer(schema).NormalizeAll(header, rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ledger.BrokenDown, records[0].Condition)
}

// =============================================================================
// ROW NORMALIZATION
// =============================================================================

func TestNormalizer_ValidRow_TypedRecord(t *testing.T) {
	n := ledger.NewNormalizer(ledger.ToolsSchema())
	rows := [][]string{
		row("2024-03-01 10:15:00", "2024-03-01", "  alex  ", "Drills", " Makita_Drill ", "Check Out", "Checked", "fine"),
	}

	records, malformed, err := n.NormalizeAll(toolsHeader(), rows)
	require.NoError(t, err)
	require.Empty(t, malformed)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Makita_Drill", rec.AssetKey, "cells are trimmed")
	assert.Equal(t, "alex", rec.Actor)
	assert.Equal(t, ledger.CheckOut, rec.Direction)
	assert.Equal(t, ledger.Checked, rec.Condition)
	assert.Equal(t, int64(1), rec.Sequence)
	require.True(t, rec.HasTimestamp())
	assert.Equal(t, time.Date(2024, time.March, 1, 10, 15, 0, 0, time.UTC), *rec.OccurredAt)
}

func TestNormalizer_UnmatchedEnum_RejectsOnlyThatRow(t *testing.T) {
	// GIVEN: Three rows, the middle one with a garbled Transaction value
	// WHEN: Normalizing
	// THEN: Two records come back, the bad row is reported, resolution continues

	n := ledger.NewNormalizer(ledger.ToolsSchema())
	rows := [][]string{
		row("2024-03-01 10:00:00", "", "alex", "", "Jigsaw", "Check In", "Checked", ""),
		row("2024-03-01 11:00:00", "", "alex", "", "Jigsaw", "check in", "Checked", ""), // wrong case
		row("2024-03-01 12:00:00", "", "alex", "", "Jigsaw", "Check Out", "Checked", ""),
	}

	records, malformed, err := n.NormalizeAll(toolsHeader(), rows)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, malformed, 1)
	assert.Equal(t, 1, malformed[0].Row)
	assert.Equal(t, "Transaction", malformed[0].Field)
	assert.Equal(t, "check in", malformed[0].Value)

	// Sequence still reflects physical append order, including the bad row.
	assert.Equal(t, int64(1), records[0].Sequence)
	assert.Equal(t, int64(3), records[1].Sequence)
}

func TestNormalizer_UnparseableTimestamp_AbsentNotError(t *testing.T) {
	// GIVEN: A row whose DateTime cell never parses
	// WHEN: Normalizing
	// THEN: The record is valid with an absent timestamp

	n := ledger.NewNormalizer(ledger.ToolsSchema())
	rows := [][]string{
		row("yesterday-ish", "", "alex", "", "Jigsaw", "Check In", "Checked", ""),
	}

	records, malformed, err := n.NormalizeAll(toolsHeader(), rows)
	require.NoError(t, err)
	require.Empty(t, malformed)
	require.Len(t, records, 1)
	assert.False(t, records[0].HasTimestamp())
	assert.Equal(t, int64(1), records[0].Sequence)
}

func TestNormalizer_MissingAssetKey_Malformed(t *testing.T) {
	n := ledger.NewNormalizer(ledger.ToolsSchema())
	rows := [][]string{
		row("2024-03-01 10:00:00", "", "alex", "", "   ", "Check In", "Checked", ""),
	}

	records, malformed, err := n.NormalizeAll(toolsHeader(), rows)
	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, malformed, 1)
	assert.Equal(t, "Equipment_Selected", malformed[0].Field)
}
