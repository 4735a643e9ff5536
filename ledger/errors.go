/*
errors.go - Centralized error types for the ledger and its consumers

PURPOSE:
  All error categories from the error taxonomy in one place. Domain
  packages wrap these with additional context and callers classify with
  errors.Is / errors.As.

CATEGORIES:
  Schema errors     - missing expected column; fatal for the read
  Parse errors      - unmatched enum value; rejects the one record only
  Validation errors - missing mandatory comment / required field
  Safety rejection  - the transition validator's block
  Conflict          - optimistic-concurrency append refusal (retryable)
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConflict is returned by AppendIf when a newer record for the asset
	// landed after the caller's token. Safe to retry after re-resolving.
	ErrConflict = errors.New("concurrent append detected")

	// ErrSchema is returned when the raw sheet is missing an expected column.
	ErrSchema = errors.New("schema mismatch")

	// ErrMalformedRecord is returned when a single row cannot be normalized
	// (unmatched enum, missing asset key). Resolution over the rest of the
	// log continues.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrValidation is returned for submitter mistakes (missing comment,
	// missing required field). Never partially applied.
	ErrValidation = errors.New("validation failed")

	// ErrBlocked is the safety valve: the asset's last known condition is
	// Broken Down and the proposed transaction is a check-out.
	ErrBlocked = errors.New("asset blocked by safety valve")

	// ErrAppendUnknown is returned when an append was attempted but its
	// outcome could not be confirmed (timeout mid-flight). The caller must
	// re-resolve state before retrying to avoid duplicate records.
	ErrAppendUnknown = errors.New("append outcome unknown")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context for the operator
// =============================================================================

// SchemaError names the columns the sheet was expected to have but didn't.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing columns %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// MalformedRecordError identifies the offending row and field.
type MalformedRecordError struct {
	Row   int // zero-based data row index
	Field string
	Value string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at row %d: %s=%q", e.Row, e.Field, e.Value)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// ValidationError lists every violation in one pass so the submitter can
// fix them all at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// BlockedCheckoutError carries the blocking prior record so the operator
// sees why the asset cannot go out and how to clear it.
type BlockedCheckoutError struct {
	AssetKey   string
	LastRecord Record
}

func (e *BlockedCheckoutError) Error() string {
	when := "unknown time"
	if e.LastRecord.HasTimestamp() {
		when = e.LastRecord.OccurredAt.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf(
		"safety valve: %s cannot be checked out, last status is Broken Down (record %d, %s); after repair, check it in with status Checked",
		e.AssetKey, e.LastRecord.Sequence, when)
}

func (e *BlockedCheckoutError) Unwrap() error { return ErrBlocked }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable reports whether the error might succeed on a straight retry.
// ErrAppendUnknown is deliberately excluded: the caller must re-resolve
// first.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsClientError reports whether the error is the submitter's to fix.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrBlocked) ||
		errors.Is(err, ErrMalformedRecord)
}
