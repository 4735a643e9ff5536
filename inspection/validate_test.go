package inspection_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var criticalSet = inspection.NewNameSet("Brake Inspection", "Engine")

func baseSubmission(items ...inspection.Item) inspection.Submission {
	return inspection.Submission{
		Subject:        "Forklift 12",
		Operator:       "maria",
		Date:           time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		OperationHours: decimal.NewFromInt(420),
		Items:          items,
	}
}

// =============================================================================
// CHECKLIST INVARIANT
// =============================================================================

func TestValidate_BrokenWithoutComment_NamesTheItem(t *testing.T) {
	sub := baseSubmission(
		inspection.Item{Name: "Lights", Checked: true},
		inspection.Item{Name: "Engine", Broken: true, Comment: "  "},
	)

	_, err := inspection.Validate(sub, criticalSet, time.Now())

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Equal(t, "Engine: comment is required for a breakdown", vErr.Violations[0])
}

func TestValidate_UnmarkedItem_Rejected(t *testing.T) {
	sub := baseSubmission(inspection.Item{Name: "Lights"})

	_, err := inspection.Validate(sub, criticalSet, time.Now())

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Violations[0], "Lights: mark it")
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	sub := inspection.Submission{
		Items: []inspection.Item{
			{Name: "Engine", Broken: true},
			{Name: ""},
		},
	}

	_, err := inspection.Validate(sub, criticalSet, time.Now())

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Violations, 4, "subject, operator, broken comment, unnamed item")
}

func TestValidate_CheckedAndBrokenWithComment_Valid(t *testing.T) {
	// "X B" - inspected, then found broken mid-shift.
	sub := baseSubmission(inspection.Item{Name: "Lights", Checked: true, Broken: true, Comment: "left lamp out"})

	entry, err := inspection.Validate(sub, criticalSet, time.Now())

	require.NoError(t, err)
	assert.Equal(t, []string{"Lights"}, entry.BrokenItems)
	assert.False(t, entry.CriticalBreak)
}

// =============================================================================
// CRITICAL BREAK DERIVATION
// =============================================================================

func TestValidate_CriticalBreak(t *testing.T) {
	t.Run("breakdown on a critical item raises the flag", func(t *testing.T) {
		sub := baseSubmission(
			inspection.Item{Name: "Engine", Broken: true, Comment: "overheating"},
			inspection.Item{Name: "Lights", Checked: true},
		)

		entry, err := inspection.Validate(sub, criticalSet, time.Now())

		require.NoError(t, err)
		assert.True(t, entry.CriticalBreak)
		assert.Equal(t, []string{"Engine"}, entry.BrokenItems)
	})

	t.Run("breakdown on a non-critical item does not", func(t *testing.T) {
		sub := baseSubmission(inspection.Item{Name: "Lights", Broken: true, Comment: "cracked lens"})

		entry, err := inspection.Validate(sub, criticalSet, time.Now())

		require.NoError(t, err)
		assert.False(t, entry.CriticalBreak)
	})

	t.Run("all checked yields no broken items", func(t *testing.T) {
		sub := baseSubmission(
			inspection.Item{Name: "Brake Inspection", Checked: true},
			inspection.Item{Name: "Engine", Checked: true},
		)

		entry, err := inspection.Validate(sub, criticalSet, time.Now())

		require.NoError(t, err)
		assert.False(t, entry.CriticalBreak)
		assert.Empty(t, entry.BrokenItems)
	})
}

func TestValidate_StampsEntry(t *testing.T) {
	now := time.Date(2024, 3, 18, 9, 30, 0, 0, time.UTC)
	sub := baseSubmission(inspection.Item{Name: "Engine", Checked: true})

	entry, err := inspection.Validate(sub, criticalSet, now)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, now, entry.SubmittedAt)
}

// =============================================================================
// SHEET ROW CODEC
// =============================================================================

func TestRowCodec_HeaderAndRow(t *testing.T) {
	codec := inspection.RowCodec{Items: []string{"Engine", "Lights"}}

	assert.Equal(t, []string{
		"DateTime", "FormDate", "Employee Name", "Subject", "Operation",
		"Engine", "Engine Comments",
		"Lights", "Lights Comments",
	}, codec.Header())

	entry := inspection.Entry{
		Submission: baseSubmission(
			inspection.Item{Name: "Engine", Checked: true, Broken: true, Comment: "knocking"},
			inspection.Item{Name: "Lights", Checked: true},
		),
		SubmittedAt: time.Date(2024, 3, 18, 9, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, []string{
		"2024-03-18 09:30:00", "2024-03-18", "maria", "Forklift 12", "420",
		"X B", "knocking",
		"X", "",
	}, codec.Row(entry))
}

func TestRowCodec_MissingItem_RendersEmptyCells(t *testing.T) {
	codec := inspection.RowCodec{Items: []string{"Engine", "Hydraulics"}}
	entry := inspection.Entry{
		Submission:  baseSubmission(inspection.Item{Name: "Engine", Checked: true}),
		SubmittedAt: time.Date(2024, 3, 18, 9, 30, 0, 0, time.UTC),
	}

	row := codec.Row(entry)
	assert.Equal(t, "X", row[5])
	assert.Equal(t, "", row[7], "unreported item has no mark")
	assert.Equal(t, "", row[8], "and no comment")
}
