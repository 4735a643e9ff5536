package report

import "github.com/symeon158/Equipment-Inspection/ledger"

// Filter narrows the transaction table. Zero values mean "all", matching
// the legacy report's dropdowns.
type Filter struct {
	Condition ledger.Condition
	Direction ledger.Direction
	AssetKey  string
}

// FilterRecords returns the records matching every set filter field,
// preserving log order.
func FilterRecords(records []ledger.Record, f Filter) []ledger.Record {
	result := make([]ledger.Record, 0, len(records))
	for _, rec := range records {
		if f.Condition != "" && rec.Condition != f.Condition {
			continue
		}
		if f.Direction != "" && rec.Direction != f.Direction {
			continue
		}
		if f.AssetKey != "" && rec.AssetKey != f.AssetKey {
			continue
		}
		result = append(result, rec)
	}
	return result
}
