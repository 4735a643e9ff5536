package alert_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symeon158/Equipment-Inspection/alert"
	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fakeSender struct {
	name string
	fail error
	sent []alert.Message
	from string
	to   []string
}

func (s *fakeSender) Name() string { return s.name }

func (s *fakeSender) Send(_ context.Context, from string, to []string, msg alert.Message) error {
	if s.fail != nil {
		return s.fail
	}
	s.from = from
	s.to = to
	s.sent = append(s.sent, msg)
	return nil
}

func brokenRecord(asset, category string) ledger.Record {
	at := time.Date(2024, 3, 18, 14, 5, 0, 0, time.UTC)
	return ledger.Record{
		AssetKey:   asset,
		Category:   category,
		Actor:      "maria",
		Direction:  ledger.CheckIn,
		Condition:  ledger.BrokenDown,
		Comment:    "hydraulics leak",
		OccurredAt: &at,
		Sequence:   5,
	}
}

func newDispatcher(transports ...alert.Sender) *alert.Dispatcher {
	return alert.NewDispatcher(
		"alerts@example.com",
		[]string{"maintenance@example.com"},
		transports,
		inspection.NewNameSet("Forklifts"),
		nil,
	)
}

// =============================================================================
// TRANSACTION TRIGGER RULES
// =============================================================================

func TestDispatch_CriticalCategoryBreakdown_Sends(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := newDispatcher(sender)

	d.Dispatch(context.Background(), brokenRecord("FORK-1", "Forklifts"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Equipment Broken Down: FORK-1", msg.Subject)
	assert.Contains(t, msg.Body, "Sequence:    5")
	assert.Contains(t, msg.Body, "hydraulics leak")
	assert.Equal(t, "alerts@example.com", sender.from)
	assert.Equal(t, []string{"maintenance@example.com"}, sender.to)
}

func TestDispatch_NonCriticalCategory_Silent(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := newDispatcher(sender)

	d.Dispatch(context.Background(), brokenRecord("DRILL-1", "Drills"))

	assert.Empty(t, sender.sent)
}

func TestDispatch_CheckedRecord_Silent(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := newDispatcher(sender)

	rec := brokenRecord("FORK-1", "Forklifts")
	rec.Condition = ledger.Checked
	d.Dispatch(context.Background(), rec)

	assert.Empty(t, sender.sent)
}

func TestDispatch_Force_OverridesCategoryFilter(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := newDispatcher(sender)
	d.Force = true

	d.Dispatch(context.Background(), brokenRecord("DRILL-1", "Drills"))

	assert.Len(t, sender.sent, 1)
}

func TestDispatch_CriticalAssetKey_Sends(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := alert.NewDispatcher("a@x", []string{"b@x"}, []alert.Sender{sender},
		inspection.NewNameSet("FORK-1"), nil)

	d.Dispatch(context.Background(), brokenRecord("FORK-1", "Drills"))

	assert.Len(t, sender.sent, 1)
}

// =============================================================================
// TRANSPORT FALLBACK
// =============================================================================

func TestDeliver_PrimaryFails_FallbackUsed(t *testing.T) {
	primary := &fakeSender{name: "starttls", fail: errors.New("connection refused")}
	fallback := &fakeSender{name: "ssl"}
	d := newDispatcher(primary, fallback)

	d.Dispatch(context.Background(), brokenRecord("FORK-1", "Forklifts"))

	assert.Empty(t, primary.sent)
	assert.Len(t, fallback.sent, 1)
}

func TestDeliver_AllTransportsFail_DoesNotPanic(t *testing.T) {
	a := &fakeSender{name: "a", fail: errors.New("down")}
	b := &fakeSender{name: "b", fail: errors.New("also down")}
	d := newDispatcher(a, b)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), brokenRecord("FORK-1", "Forklifts"))
	})
}

func TestDeliver_NoRecipients_Skips(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := alert.NewDispatcher("a@x", nil, []alert.Sender{sender},
		inspection.NewNameSet("Forklifts"), nil)

	d.Dispatch(context.Background(), brokenRecord("FORK-1", "Forklifts"))

	assert.Empty(t, sender.sent)
}

// =============================================================================
// INSPECTION ALERTS
// =============================================================================

func inspectionEntry(critical bool) inspection.Entry {
	return inspection.Entry{
		ID: "e1",
		Submission: inspection.Submission{
			Subject:        "Forklift 12",
			Operator:       "maria",
			Date:           time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
			OperationHours: decimal.NewFromInt(420),
			Items: []inspection.Item{
				{Name: "Engine", Broken: true, Comment: "overheating"},
			},
			PhotoPath:     "/uploads/photo.jpg",
			SignaturePath: "/uploads/sig.png",
		},
		CriticalBreak: critical,
		BrokenItems:   []string{"Engine"},
	}
}

func TestInspectionAlert_CriticalBreak_SendsWithAttachments(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := newDispatcher(sender)

	d.InspectionAlert(context.Background(), inspectionEntry(true))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Forklift 12 Broken Down", msg.Subject)
	assert.Contains(t, msg.Body, "Engine: overheating")
	assert.Contains(t, msg.Body, "Operation hours: 420")
	assert.Equal(t, []string{"/uploads/photo.jpg", "/uploads/sig.png"}, msg.Attachments)
}

func TestInspectionAlert_NoCriticalBreak_Silent(t *testing.T) {
	sender := &fakeSender{name: "primary"}
	d := newDispatcher(sender)

	d.InspectionAlert(context.Background(), inspectionEntry(false))

	assert.Empty(t, sender.sent)
}
