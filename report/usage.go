/*
Package report builds read-only views over the logs: the service meter per
asset and the filterable transaction table. Everything here is a pure
computation over records handed in by the caller; nothing is cached.
*/
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/symeon158/Equipment-Inspection/inspection"
)

// =============================================================================
// SERVICE METER
// =============================================================================

// ServiceRule maps an asset to its next-service threshold in operating
// hours. Overrides win over the default.
type ServiceRule struct {
	DefaultThresholdHours decimal.Decimal
	Overrides             map[string]decimal.Decimal
}

func (r ServiceRule) Threshold(subject string) decimal.Decimal {
	if t, ok := r.Overrides[subject]; ok {
		return t
	}
	return r.DefaultThresholdHours
}

// Usage is the service meter for one asset.
type Usage struct {
	Subject          string          `json:"subject"`
	MaxHours         decimal.Decimal `json:"max_hours"`
	NextServiceHours decimal.Decimal `json:"next_service_hours"`
	RemainingHours   decimal.Decimal `json:"remaining_hours"`
	Progress         decimal.Decimal `json:"progress"` // 0..1 toward next service
	EstimatedService time.Time       `json:"estimated_service"`
	Inspections      int             `json:"inspections"`
}

var hoursPerDay = decimal.NewFromInt(24)

// BuildUsage computes the per-asset service meter from inspection entries.
//
// MaxHours is the highest reported meter reading; remaining hours to the
// threshold project an estimated service date using the legacy heuristic
// of round-the-clock utilization. Results are ordered by subject.
func BuildUsage(entries []inspection.Entry, rule ServiceRule, now time.Time) []Usage {
	bySubject := make(map[string]*Usage)
	for _, e := range entries {
		u, ok := bySubject[e.Submission.Subject]
		if !ok {
			u = &Usage{Subject: e.Submission.Subject}
			bySubject[e.Submission.Subject] = u
		}
		u.Inspections++
		if e.Submission.OperationHours.GreaterThan(u.MaxHours) {
			u.MaxHours = e.Submission.OperationHours
		}
	}

	result := make([]Usage, 0, len(bySubject))
	for _, u := range bySubject {
		u.NextServiceHours = rule.Threshold(u.Subject)
		u.RemainingHours = u.NextServiceHours.Sub(u.MaxHours)
		if u.RemainingHours.IsNegative() {
			u.RemainingHours = decimal.Zero
		}
		if u.NextServiceHours.IsPositive() {
			u.Progress = u.MaxHours.Div(u.NextServiceHours)
			if u.Progress.GreaterThan(decimal.NewFromInt(1)) {
				u.Progress = decimal.NewFromInt(1)
			}
		}
		days := u.RemainingHours.Div(hoursPerDay)
		u.EstimatedService = now.Add(time.Duration(days.InexactFloat64() * 24 * float64(time.Hour)))
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Subject < result[j].Subject })
	return result
}

// ActorCounts tallies submissions per operator (the user-distribution view).
func ActorCounts(entries []inspection.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Submission.Operator]++
	}
	return counts
}
