/*
Package ledger defines the append-only transaction log for equipment
check-in/check-out events.

PURPOSE:
  The log is the immutable source of truth for every asset's lifecycle.
  Every check-in, check-out, and breakdown report is recorded here.
  An asset's current state is always computed by replaying its records -
  there is no separate "state" row that can drift out of sync.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. EVER.
  2. IMMUTABLE: Once written, records cannot be modified
  3. ORDERED: The log assigns a monotonically increasing sequence on append
  4. AUDITABLE: Every state change is traceable to an actor and a record

CORRECTIONS:
  If a mistake is made, you don't edit the record. Instead you append a new
  record describing the true situation (e.g. a repaired asset is checked in
  with condition Checked). Both records remain in the log.

SEE ALSO:
  - log.go: the Log interface and conditional-append capability
  - normalize.go: raw sheet rows -> typed records
  - lifecycle: state resolution and the safety-valve gate built on this log
*/
package ledger

import (
	"strings"
	"time"
)

// =============================================================================
// ENUMS - Direction and Condition
// =============================================================================

// Direction says whether an asset is being taken into or out of service.
type Direction string

// Condition is the reported state of the asset at submission time.
type Condition string

// Canonical wire values. Matching is case-sensitive; anything else is a
// normalization failure, never a silent default.
const (
	CheckIn  Direction = "Check In"
	CheckOut Direction = "Check Out"

	Checked    Condition = "Checked"
	BrokenDown Condition = "Broken Down"
)

// ParseDirection matches s against the canonical direction set.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case CheckIn, CheckOut:
		return Direction(s), true
	}
	return "", false
}

// ParseCondition matches s against the canonical condition set.
func ParseCondition(s string) (Condition, bool) {
	switch Condition(s) {
	case Checked, BrokenDown:
		return Condition(s), true
	}
	return "", false
}

// =============================================================================
// RECORD - One immutable fact in the log
// =============================================================================

// Record is a single check-in/check-out event for one asset.
//
// OccurredAt is what the submitter's clock said and may be absent when the
// original cell was missing or garbled. It is never trusted alone for
// ordering: Sequence is the log's own append order and always present.
type Record struct {
	ID         string     // assigned by the coordinator (uuid)
	AssetKey   string     // scanned or typed equipment code, e.g. "Angle_Grinder_F125"
	Category   string     // catalog category the key was picked from; may be empty
	Actor      string     // person submitting
	Direction  Direction
	Condition  Condition
	Comment    string     // mandatory, non-empty when Condition = BrokenDown
	OccurredAt *time.Time // absent when the source timestamp was unparseable
	Sequence   int64      // append order assigned by the log; 0 until appended
}

// HasTimestamp reports whether the record carries a usable wall-clock time.
func (r Record) HasTimestamp() bool {
	return r.OccurredAt != nil && !r.OccurredAt.IsZero()
}

// Broken reports whether this record marks the asset broken down.
func (r Record) Broken() bool {
	return r.Condition == BrokenDown
}

// NeedsComment reports whether the comment invariant applies and is violated.
func (r Record) NeedsComment() bool {
	return r.Condition == BrokenDown && strings.TrimSpace(r.Comment) == ""
}

// =============================================================================
// ASSET STATE - Derived, never stored
// =============================================================================

// AssetState is the resolved "current" view of one asset.
//
// It is computed on demand from the full log and becomes stale the instant
// another record is appended, so it must be recomputed immediately before
// any decision that depends on it.
type AssetState struct {
	AssetKey   string
	Condition  Condition
	Direction  Direction
	LastRecord Record
	ResolvedAt time.Time
}

// Blocked reports whether the safety valve applies: an asset whose last
// known condition is Broken Down cannot be checked out.
func (s AssetState) Blocked() bool {
	return s.Condition == BrokenDown
}
