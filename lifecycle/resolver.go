/*
Package lifecycle derives asset state from the transaction log and guards
every new submission with the safety valve.

PURPOSE:
  The log is the source of truth; this package is the read model and the
  write gate. Resolver answers "what is this asset's current state?",
  the transition rules answer "is this proposed transaction admissible?",
  and the Coordinator runs the check -> append -> re-check protocol that
  keeps racing submitters from breaking the safety invariant.

ORDERING RULE (resolver.go):
  "Latest" is decided by OccurredAt when both records carry one - later
  wins, with sequence breaking exact ties. A record with an absent
  OccurredAt is not comparable by time at all and falls back entirely to
  sequence. This removes the failure mode where a row with a parseable
  timestamp was ranked below one whose timestamp never parsed.

SEE ALSO:
  - transition.go: the admissibility rules
  - coordinator.go: the submission protocol
*/
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/symeon158/Equipment-Inspection/ledger"
)

// =============================================================================
// RESOLVER - Current state from the full log
// =============================================================================

// Resolver computes an asset's current state by replaying its records.
// Pure apart from the ResolvedAt stamp; Now is injectable for tests.
type Resolver struct {
	Now func() time.Time
}

func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

// Resolve returns the current state for assetKey, or nil when the log has
// no record for it. No history means no restriction: callers must not
// block an asset that was never logged.
func (r *Resolver) Resolve(records []ledger.Record, assetKey string) *ledger.AssetState {
	key := strings.TrimSpace(assetKey)
	if key == "" {
		return nil
	}

	var last *ledger.Record
	for i := range records {
		rec := &records[i]
		if rec.AssetKey != key {
			continue
		}
		if last == nil || laterThan(*rec, *last) {
			last = rec
		}
	}
	if last == nil {
		return nil
	}

	return &ledger.AssetState{
		AssetKey:   key,
		Condition:  last.Condition,
		Direction:  last.Direction,
		LastRecord: *last,
		ResolvedAt: r.Now(),
	}
}

// ResolveLog reads the asset's records from the log and resolves them.
func (r *Resolver) ResolveLog(ctx context.Context, log ledger.Log, assetKey string) (*ledger.AssetState, error) {
	records, err := log.ReadAsset(ctx, strings.TrimSpace(assetKey))
	if err != nil {
		return nil, err
	}
	return r.Resolve(records, assetKey), nil
}

// laterThan reports whether a should be ranked after b.
//
// Both timestamps present: later OccurredAt wins, sequence breaks ties.
// Either absent: sequence decides - the physically later append wins,
// matching the log's own total order.
func laterThan(a, b ledger.Record) bool {
	if a.HasTimestamp() && b.HasTimestamp() {
		if a.OccurredAt.After(*b.OccurredAt) {
			return true
		}
		if b.OccurredAt.After(*a.OccurredAt) {
			return false
		}
	}
	return a.Sequence > b.Sequence
}
