/*
handlers.go - HTTP handlers for the inspection backend

ENDPOINTS:
  POST /api/transactions            Submit a check-in/check-out
  POST /api/inspections             Submit a checklist
  GET  /api/assets                  Advisory equipment catalog
  GET  /api/assets/{key}/state      Resolved current state
  GET  /api/assets/{key}/history    The asset's records in log order
  GET  /api/reports/usage           Service meter per asset
  GET  /api/reports/transactions    Filterable transaction table
  GET  /api/health                  Liveness

ERROR MAPPING:
  400  validation failures (all violations listed)
  404  no history for the asset
  409  safety-valve block / concurrency conflict (conflict is retryable)
  503  append outcome unknown (caller must re-resolve before retrying)
  500  everything else
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/symeon158/Equipment-Inspection/alert"
	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/ledger"
	"github.com/symeon158/Equipment-Inspection/lifecycle"
	"github.com/symeon158/Equipment-Inspection/report"
)

// Handler holds the API's dependencies.
type Handler struct {
	Coordinator   *lifecycle.Coordinator
	Log           ledger.Log
	Inspections   inspection.Store
	Dispatcher    *alert.Dispatcher
	CriticalItems inspection.NameSet
	Catalog       []string
	ServiceRule   report.ServiceRule
	Logger        *zap.Logger
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

// SubmitTransaction runs a proposed record through the coordinator.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, RejectedResponse{Reason: "invalid JSON body"})
		return
	}

	seq, err := h.Coordinator.Submit(r.Context(), req.toRecord())
	if err != nil {
		h.writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AcceptedResponse{Accepted: true, Sequence: seq})
}

// SubmitInspection validates and records a checklist, alerting on a
// critical break.
func (h *Handler) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	var req InspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, RejectedResponse{Reason: "invalid JSON body"})
		return
	}

	entry, err := inspection.Validate(req.toSubmission(), h.CriticalItems, time.Now())
	if err != nil {
		h.writeSubmissionError(w, err)
		return
	}

	seq, err := h.Inspections.Record(r.Context(), *entry)
	if err != nil {
		h.internal(w, "record inspection", err)
		return
	}
	entry.Sequence = seq

	if h.Dispatcher != nil && entry.CriticalBreak {
		e := *entry
		go h.Dispatcher.InspectionAlert(withoutCancel(r), e)
	}

	critical := entry.CriticalBreak
	writeJSON(w, http.StatusCreated, AcceptedResponse{Accepted: true, Sequence: seq, CriticalBreak: &critical})
}

// =============================================================================
// READ MODEL
// =============================================================================

// GetState resolves the current state for one asset.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	state, err := h.Coordinator.State(r.Context(), key)
	if err != nil {
		h.internal(w, "resolve state", err)
		return
	}
	if state == nil {
		writeJSON(w, http.StatusNotFound, RejectedResponse{Reason: "no history for asset " + key})
		return
	}
	writeJSON(w, http.StatusOK, StateDTO{
		AssetKey:   state.AssetKey,
		Condition:  string(state.Condition),
		Direction:  string(state.Direction),
		Blocked:    state.Blocked(),
		LastRecord: toRecordDTO(state.LastRecord),
		ResolvedAt: state.ResolvedAt,
	})
}

// GetHistory returns one asset's records in log order.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	records, err := h.Coordinator.History(r.Context(), key)
	if err != nil {
		h.internal(w, "read history", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// ListAssets returns the advisory catalog.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"assets": h.Catalog})
}

// =============================================================================
// REPORTS
// =============================================================================

// UsageReport computes the per-asset service meter.
func (h *Handler) UsageReport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Inspections.ReadAll(r.Context())
	if err != nil {
		h.internal(w, "read inspections", err)
		return
	}

	usages := report.BuildUsage(entries, h.ServiceRule, time.Now())
	resp := UsageResponse{ActorCounts: report.ActorCounts(entries)}
	for _, u := range usages {
		resp.Assets = append(resp.Assets, usageDTO{
			Subject:          u.Subject,
			MaxHours:         u.MaxHours.InexactFloat64(),
			NextServiceHours: u.NextServiceHours.InexactFloat64(),
			RemainingHours:   u.RemainingHours.InexactFloat64(),
			Progress:         u.Progress.InexactFloat64(),
			EstimatedService: u.EstimatedService.Format(time.DateOnly),
			Inspections:      u.Inspections,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// TransactionReport lists ledger records matching the query filters.
func (h *Handler) TransactionReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := report.Filter{AssetKey: q.Get("asset")}

	if v := q.Get("condition"); v != "" {
		cond, ok := ledger.ParseCondition(v)
		if !ok {
			writeJSON(w, http.StatusBadRequest, RejectedResponse{Reason: "unknown condition " + v})
			return
		}
		filter.Condition = cond
	}
	if v := q.Get("direction"); v != "" {
		dir, ok := ledger.ParseDirection(v)
		if !ok {
			writeJSON(w, http.StatusBadRequest, RejectedResponse{Reason: "unknown direction " + v})
			return
		}
		filter.Direction = dir
	}

	records, err := h.Log.ReadAll(r.Context())
	if err != nil {
		h.internal(w, "read log", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(report.FilterRecords(records, filter)))
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func (h *Handler) writeSubmissionError(w http.ResponseWriter, err error) {
	var vErr *ledger.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, RejectedResponse{
			Reason:  "validation failed",
			Reasons: vErr.Violations,
		})
		return
	}

	var bErr *ledger.BlockedCheckoutError
	if errors.As(err, &bErr) {
		blocking := toRecordDTO(bErr.LastRecord)
		writeJSON(w, http.StatusConflict, RejectedResponse{
			Reason:         bErr.Error(),
			BlockingRecord: &blocking,
		})
		return
	}

	switch {
	case errors.Is(err, ledger.ErrConflict):
		writeJSON(w, http.StatusConflict, RejectedResponse{
			Reason:    "conflict, retry",
			Retryable: true,
		})
	case errors.Is(err, ledger.ErrAppendUnknown):
		writeJSON(w, http.StatusServiceUnavailable, RejectedResponse{
			Reason: "append outcome unknown; re-read state before retrying",
		})
	default:
		h.internal(w, "submit", err)
	}
}

func (h *Handler) internal(w http.ResponseWriter, op string, err error) {
	if h.Logger != nil {
		h.Logger.Error("internal error", zap.String("op", op), zap.Error(err))
	}
	writeJSON(w, http.StatusInternalServerError, RejectedResponse{Reason: "internal error"})
}

// withoutCancel detaches alert delivery from the request lifetime: the
// response goes out before the mail does.
func withoutCancel(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
