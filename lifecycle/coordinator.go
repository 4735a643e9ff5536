/*
coordinator.go - The submission protocol

PURPOSE:
  Orchestrates one submission end to end:

    1. Validate the record itself (required fields, mandatory comment)
    2. Read the log, resolve current state
    3. Run the safety valve against the resolved state
    4. Append - conditionally when the log supports it
    5. Re-check / surface conflicts
    6. Hand the accepted record to the alert dispatcher (fire-and-continue)

CONSISTENCY:
  With a ConditionalLog, the append carries an optimistic token (highest
  sequence seen for the asset during the pre-check); a racing writer makes
  the append fail with ErrConflict and nothing is written. The caller
  re-resolves and retries.

  Without that capability the window cannot be fully closed: the record is
  appended, the state is re-resolved, and if the decision would now differ
  the coordinator logs a warning and surfaces ErrConflict anyway. The
  record stays in the log - a documented limitation of unconditional
  backends, not a silent one.

FAILURE SEMANTICS:
  Errors before the append mean "definitely not appended" - safe to retry
  as-is. A timeout or cancellation during the append itself is wrapped in
  ErrAppendUnknown: the caller must re-resolve before retrying, otherwise
  a retry could double-book the record.
*/
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/symeon158/Equipment-Inspection/ledger"
)

// Notifier receives accepted records. Delivery is best-effort and must
// never block or fail the submission path.
type Notifier interface {
	Dispatch(ctx context.Context, rec ledger.Record)
}

// Coordinator runs the submission protocol against a single shared log.
// It holds no state of its own between submissions; every decision
// re-resolves from the log.
type Coordinator struct {
	log      ledger.Log
	resolver *Resolver
	notifier Notifier
	logger   *zap.Logger
}

func NewCoordinator(log ledger.Log, resolver *Resolver, notifier Notifier, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{log: log, resolver: resolver, notifier: notifier, logger: logger}
}

// Submit validates and appends one transaction. On success it returns the
// assigned sequence and hands the record to the notifier on a separate
// goroutine.
func (c *Coordinator) Submit(ctx context.Context, proposed ledger.Record) (int64, error) {
	if err := validateRecord(proposed); err != nil {
		return 0, err
	}
	proposed.AssetKey = strings.TrimSpace(proposed.AssetKey)
	if proposed.ID == "" {
		proposed.ID = uuid.NewString()
	}

	// Pre-check: resolve from a fresh read, never from a cache.
	records, err := c.log.ReadAsset(ctx, proposed.AssetKey)
	if err != nil {
		return 0, fmt.Errorf("read log: %w", err)
	}
	current := c.resolver.Resolve(records, proposed.AssetKey)
	if err := Check(current, proposed); err != nil {
		return 0, err
	}

	var token int64
	if current != nil {
		token = current.LastRecord.Sequence
	}

	seq, err := c.append(ctx, proposed, token)
	if err != nil {
		return 0, err
	}
	proposed.Sequence = seq

	c.logger.Info("transaction accepted",
		zap.String("asset", proposed.AssetKey),
		zap.String("actor", proposed.Actor),
		zap.String("direction", string(proposed.Direction)),
		zap.String("condition", string(proposed.Condition)),
		zap.Int64("sequence", seq))

	if c.notifier != nil {
		rec := proposed
		go c.notifier.Dispatch(context.WithoutCancel(ctx), rec)
	}
	return seq, nil
}

// append writes the record, preferring the conditional path.
func (c *Coordinator) append(ctx context.Context, rec ledger.Record, token int64) (int64, error) {
	if cl, ok := c.log.(ledger.ConditionalLog); ok {
		seq, err := cl.AppendIf(ctx, rec, token)
		if err != nil {
			return 0, classifyAppendErr(err)
		}
		return seq, nil
	}

	// Unconditional backend: append, then re-check. The re-check is
	// advisory - a conflicting record cannot be undone, only reported.
	seq, err := c.log.Append(ctx, rec)
	if err != nil {
		return 0, classifyAppendErr(err)
	}

	after, err := c.log.ReadAsset(ctx, rec.AssetKey)
	if err != nil {
		return 0, fmt.Errorf("%w: post-append re-check failed: %v", ledger.ErrAppendUnknown, err)
	}
	var foreign []ledger.Record
	for _, r := range after {
		if r.Sequence != seq && r.Sequence > token {
			foreign = append(foreign, r)
		}
	}
	if len(foreign) > 0 {
		state := c.resolver.Resolve(foreign, rec.AssetKey)
		if err := Check(state, rec); err != nil {
			c.logger.Warn("concurrent append changed the decision; record already committed",
				zap.String("asset", rec.AssetKey),
				zap.Int64("sequence", seq),
				zap.Int64("conflicting_sequence", state.LastRecord.Sequence))
			return 0, fmt.Errorf("%w: %v", ledger.ErrConflict, err)
		}
	}
	return seq, nil
}

func classifyAppendErr(err error) error {
	switch {
	case errors.Is(err, ledger.ErrConflict):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The write was in flight; whether it landed is unknowable here.
		return fmt.Errorf("%w: %v", ledger.ErrAppendUnknown, err)
	default:
		return fmt.Errorf("append: %w", err)
	}
}

// State resolves the current state for an asset. Nil state (no history)
// is returned as (nil, nil).
func (c *Coordinator) State(ctx context.Context, assetKey string) (*ledger.AssetState, error) {
	return c.resolver.ResolveLog(ctx, c.log, assetKey)
}

// History returns the asset's records in append order.
func (c *Coordinator) History(ctx context.Context, assetKey string) ([]ledger.Record, error) {
	return c.log.ReadAsset(ctx, strings.TrimSpace(assetKey))
}

// validateRecord collects every submitter-side violation in one pass.
func validateRecord(rec ledger.Record) error {
	var violations []string
	if strings.TrimSpace(rec.AssetKey) == "" {
		violations = append(violations, "asset key is required")
	}
	if strings.TrimSpace(rec.Actor) == "" {
		violations = append(violations, "actor is required")
	}
	if _, ok := ledger.ParseDirection(string(rec.Direction)); !ok {
		violations = append(violations, fmt.Sprintf("direction must be %q or %q", ledger.CheckIn, ledger.CheckOut))
	}
	if _, ok := ledger.ParseCondition(string(rec.Condition)); !ok {
		violations = append(violations, fmt.Sprintf("condition must be %q or %q", ledger.Checked, ledger.BrokenDown))
	}
	if rec.NeedsComment() {
		violations = append(violations, "comment is required when condition is Broken Down")
	}
	if len(violations) > 0 {
		return &ledger.ValidationError{Violations: violations}
	}
	return nil
}
