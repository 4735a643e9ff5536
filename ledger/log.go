/*
log.go - Log interface for record persistence (append-only)

PURPOSE:
  Defines the interface between the domain logic and the storage backend.
  The original system used a shared spreadsheet as both log and query index;
  here the log is an explicit collaborator with a documented conditional
  append, so the read model (lifecycle.Resolver) is decoupled from the
  storage technology.

APPEND-ONLY CONTRACT:
  - Append / AppendIf are the ONLY write operations
  - No Update() or Delete() methods exist
  - Records are returned in append (sequence) order

CONDITIONAL APPEND:
  Two submitters racing on the same asset must not both succeed when the
  combined effect violates the safety invariant. AppendIf takes an
  optimistic-concurrency token: the highest sequence the caller has seen
  for that asset (0 for "no history"). If any record for the asset has
  landed past the token, the append is refused with ErrConflict and
  nothing is written.

  ConditionalLog is a separate capability interface: backends that cannot
  implement it (e.g. a remote sheet connector) still satisfy Log, and the
  coordinator degrades to an advisory post-append re-check.

IMPLEMENTATIONS:
  - ledger/store: in-memory, for tests and dev
  - store/sqlite: production SQLite

SEE ALSO:
  - lifecycle/coordinator.go: the check -> append -> re-check protocol
*/
package ledger

import "context"

// Log is the append-only record store. The only shared resource in the
// system; everything else is pure computation over what it returns.
type Log interface {
	// Append persists a record and returns the assigned sequence.
	Append(ctx context.Context, rec Record) (int64, error)

	// ReadAll returns every record in sequence order.
	ReadAll(ctx context.Context) ([]Record, error)

	// ReadAsset returns every record whose AssetKey matches exactly,
	// in sequence order.
	ReadAsset(ctx context.Context, assetKey string) ([]Record, error)
}

// ConditionalLog extends Log with an optimistic-concurrency append.
type ConditionalLog interface {
	Log

	// AppendIf persists rec only if no record for rec.AssetKey exists with
	// a sequence greater than token. Returns ErrConflict otherwise, with
	// nothing written.
	AppendIf(ctx context.Context, rec Record, token int64) (int64, error)
}
