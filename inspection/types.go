/*
Package inspection validates structured checklist submissions before they
are allowed to reach the log.

PURPOSE:
  A daily inspection is a set of per-item verdicts: each item is either
  Checked, or Broken Down with a mandatory comment. The validator enforces
  that invariant in one pass, collecting every violation so the submitter
  fixes them all at once, and computes whether any broken item is in the
  configured critical set - the trigger condition for alerts.

  The critical-break flag is computed from the submitted data, never from
  a read of the log: a stale read must not decide whether an alert fires.

SEE ALSO:
  - sheetrow.go: rendering a submission to the original sheet mark scheme
  - alert: consumes the critical-break flag
*/
package inspection

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUBMISSION - What the form collects
// =============================================================================

// Item is one checklist line: a component and its verdict.
type Item struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
	Broken  bool   `json:"broken"`
	Comment string `json:"comment"`
}

// Submission is a complete checklist as submitted, before validation.
type Submission struct {
	Subject        string          `json:"subject"`  // inspected asset, e.g. "ME 119135"
	Operator       string          `json:"operator"` // person performing the inspection
	Date           time.Time       `json:"date"`     // form date (day granularity)
	OperationHours decimal.Decimal `json:"operation_hours"`
	Items          []Item          `json:"items"`

	// Optional media captured alongside the form. Paths only; producing
	// them is someone else's job and absence is not an error.
	PhotoPath     string `json:"photo_path,omitempty"`
	SignaturePath string `json:"signature_path,omitempty"`
}

// Entry is a validated submission as stored: the submission plus the
// derived fields and the store-assigned sequence.
type Entry struct {
	ID            string
	Submission    Submission
	CriticalBreak bool
	BrokenItems   []string // names of items marked broken, in item order
	SubmittedAt   time.Time
	Sequence      int64
}

// =============================================================================
// NAME SET - Critical item lookup
// =============================================================================

// NameSet is a set of checklist item names.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
