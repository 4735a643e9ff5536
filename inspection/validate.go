package inspection

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/symeon158/Equipment-Inspection/ledger"
)

// Validate enforces the checklist invariant and derives the alert trigger.
//
// For every item exactly one of these must hold: Checked, or Broken with a
// non-empty comment after trimming. All violations are collected in one
// pass and returned together as a ledger.ValidationError; a submission
// with any violation must not reach the log.
func Validate(sub Submission, criticalItems NameSet, now time.Time) (*Entry, error) {
	var violations []string

	if strings.TrimSpace(sub.Subject) == "" {
		violations = append(violations, "subject is required")
	}
	if strings.TrimSpace(sub.Operator) == "" {
		violations = append(violations, "operator is required")
	}
	if len(sub.Items) == 0 {
		violations = append(violations, "at least one checklist item is required")
	}

	var brokenItems []string
	criticalBreak := false
	for _, item := range sub.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			violations = append(violations, "checklist item without a name")
			continue
		}
		switch {
		case item.Broken && strings.TrimSpace(item.Comment) == "":
			violations = append(violations, fmt.Sprintf("%s: comment is required for a breakdown", name))
		case !item.Checked && !item.Broken:
			violations = append(violations, fmt.Sprintf("%s: mark it %s or %s", name, ledger.Checked, ledger.BrokenDown))
		}
		if item.Broken {
			brokenItems = append(brokenItems, name)
			if criticalItems.Has(name) {
				criticalBreak = true
			}
		}
	}

	if len(violations) > 0 {
		return nil, &ledger.ValidationError{Violations: violations}
	}

	return &Entry{
		ID:            uuid.NewString(),
		Submission:    sub,
		CriticalBreak: criticalBreak,
		BrokenItems:   brokenItems,
		SubmittedAt:   now,
	}, nil
}
