/*
transition.go - The safety-valve state machine

PURPOSE:
  One canonical set of admissibility rules. The source system had grown
  near-duplicate, slightly inconsistent copies of this check across form
  revisions; every call site now goes through Check.

STATES:
  Unknown     no prior record for the asset
  Checked     last record's condition was Checked
  BrokenDown  last record's condition was Broken Down

RULES:
  From BrokenDown, any Check Out is rejected - a broken asset cannot be
  put into service. A Check In with Checked is the designated "repaired"
  transition and clears the block; a Check In with Broken Down re-confirms
  the breakdown and leaves the block in place. From Unknown or Checked,
  every (direction, condition) combination is admissible.

  The mandatory-comment rule for Broken Down submissions is enforced once,
  centrally, before the state machine (coordinator.go).

SCOPE:
  This is a two-state safety gate, not an inventory tracker. It does not
  model quantity, reservations, or two people checking out the same item.
*/
package lifecycle

import "github.com/symeon158/Equipment-Inspection/ledger"

// State is the asset's position in the lifecycle machine.
type State string

const (
	StateUnknown    State = "Unknown"
	StateChecked    State = "Checked"
	StateBrokenDown State = "BrokenDown"
)

// StateOf maps a resolved asset state (nil = never logged) to a machine state.
func StateOf(current *ledger.AssetState) State {
	if current == nil {
		return StateUnknown
	}
	if current.Condition == ledger.BrokenDown {
		return StateBrokenDown
	}
	return StateChecked
}

// Check decides whether the proposed transaction is admissible given the
// resolved current state. On rejection it returns a BlockedCheckoutError
// carrying the blocking prior record for operator context.
func Check(current *ledger.AssetState, proposed ledger.Record) error {
	if StateOf(current) != StateBrokenDown {
		return nil
	}
	if proposed.Direction == ledger.CheckOut {
		// Regardless of the proposed condition: broken stays in.
		return &ledger.BlockedCheckoutError{
			AssetKey:   current.AssetKey,
			LastRecord: current.LastRecord,
		}
	}
	// Check In is always admissible from BrokenDown: with Checked it marks
	// the repair, with Broken Down it re-confirms the breakdown.
	return nil
}
