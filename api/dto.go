/*
dto.go - Request/response data structures

JSON shapes for the HTTP surface. Domain types stay out of the wire
format: records are converted explicitly so the API can evolve without
touching the ledger.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/ledger"
)

// =============================================================================
// REQUESTS
// =============================================================================

// TransactionRequest is one proposed check-in/check-out.
type TransactionRequest struct {
	AssetKey   string `json:"asset_key"`
	Category   string `json:"category"`
	Actor      string `json:"actor"`
	Direction  string `json:"direction"` // "Check In" | "Check Out"
	Condition  string `json:"condition"` // "Checked" | "Broken Down"
	Comment    string `json:"comment"`
	OccurredAt string `json:"occurred_at,omitempty"` // RFC3339; optional
}

func (r TransactionRequest) toRecord() ledger.Record {
	rec := ledger.Record{
		AssetKey:  r.AssetKey,
		Category:  r.Category,
		Actor:     r.Actor,
		Direction: ledger.Direction(r.Direction),
		Condition: ledger.Condition(r.Condition),
		Comment:   r.Comment,
	}
	if r.OccurredAt != "" {
		if t, err := time.Parse(time.RFC3339, r.OccurredAt); err == nil {
			rec.OccurredAt = &t
		}
		// Unparseable timestamps degrade to sequence-only ordering;
		// they are not an error.
	}
	return rec
}

// InspectionRequest is one checklist submission.
type InspectionRequest struct {
	Subject        string            `json:"subject"`
	Operator       string            `json:"operator"`
	Date           string            `json:"date"` // 2006-01-02
	OperationHours float64           `json:"operation_hours"`
	Items          []inspection.Item `json:"items"`
	PhotoPath      string            `json:"photo_path,omitempty"`
	SignaturePath  string            `json:"signature_path,omitempty"`
}

func (r InspectionRequest) toSubmission() inspection.Submission {
	sub := inspection.Submission{
		Subject:        r.Subject,
		Operator:       r.Operator,
		OperationHours: decimal.NewFromFloat(r.OperationHours),
		Items:          r.Items,
		PhotoPath:      r.PhotoPath,
		SignaturePath:  r.SignaturePath,
	}
	if t, err := time.Parse(time.DateOnly, r.Date); err == nil {
		sub.Date = t
	}
	return sub
}

// =============================================================================
// RESPONSES
// =============================================================================

// RecordDTO is the wire form of a ledger record.
type RecordDTO struct {
	Sequence   int64  `json:"sequence"`
	ID         string `json:"id"`
	AssetKey   string `json:"asset_key"`
	Category   string `json:"category,omitempty"`
	Actor      string `json:"actor"`
	Direction  string `json:"direction"`
	Condition  string `json:"condition"`
	Comment    string `json:"comment,omitempty"`
	OccurredAt string `json:"occurred_at,omitempty"`
}

func toRecordDTO(rec ledger.Record) RecordDTO {
	dto := RecordDTO{
		Sequence:  rec.Sequence,
		ID:        rec.ID,
		AssetKey:  rec.AssetKey,
		Category:  rec.Category,
		Actor:     rec.Actor,
		Direction: string(rec.Direction),
		Condition: string(rec.Condition),
		Comment:   rec.Comment,
	}
	if rec.HasTimestamp() {
		dto.OccurredAt = rec.OccurredAt.Format(time.RFC3339)
	}
	return dto
}

func toRecordDTOs(recs []ledger.Record) []RecordDTO {
	dtos := make([]RecordDTO, 0, len(recs))
	for _, rec := range recs {
		dtos = append(dtos, toRecordDTO(rec))
	}
	return dtos
}

// StateDTO is the wire form of a resolved asset state.
type StateDTO struct {
	AssetKey   string    `json:"asset_key"`
	Condition  string    `json:"condition"`
	Direction  string    `json:"direction"`
	Blocked    bool      `json:"blocked"`
	LastRecord RecordDTO `json:"last_record"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// AcceptedResponse confirms a committed submission.
type AcceptedResponse struct {
	Accepted bool  `json:"accepted"`
	Sequence int64 `json:"sequence"`

	// Inspection submissions only.
	CriticalBreak *bool `json:"critical_break,omitempty"`
}

// RejectedResponse explains why a submission was not committed.
type RejectedResponse struct {
	Accepted  bool     `json:"accepted"`
	Reason    string   `json:"reason"`
	Reasons   []string `json:"reasons,omitempty"`   // all violations, when collected
	Retryable bool     `json:"retryable,omitempty"` // safe to retry after re-reading state

	// The record blocking a safety-valve rejection, for operator context.
	BlockingRecord *RecordDTO `json:"blocking_record,omitempty"`
}

// UsageResponse is the service-meter report.
type UsageResponse struct {
	Assets      []usageDTO     `json:"assets"`
	ActorCounts map[string]int `json:"actor_counts"`
}

type usageDTO struct {
	Subject          string  `json:"subject"`
	MaxHours         float64 `json:"max_hours"`
	NextServiceHours float64 `json:"next_service_hours"`
	RemainingHours   float64 `json:"remaining_hours"`
	Progress         float64 `json:"progress"`
	EstimatedService string  `json:"estimated_service"`
	Inspections      int     `json:"inspections"`
}
