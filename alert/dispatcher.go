/*
dispatcher.go - Trigger rules and transport fallback

A transaction alert fires when the record's condition is Broken Down and
its category is in the configured critical set (or the dispatcher is
forced, for testing). An inspection alert fires when the validated entry's
critical-break flag is set - computed from the submitted data, never from
the log.

Every path here is fire-and-continue. Failures are logged; nothing
propagates back to the submitter and nothing unwinds the committed append.
*/
package alert

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/symeon158/Equipment-Inspection/inspection"
	"github.com/symeon158/Equipment-Inspection/ledger"
)

// Dispatcher decides whether a submission warrants a notification and
// delivers it over the first transport that works.
type Dispatcher struct {
	From               string
	Recipients         []string
	Transports         []Sender
	CriticalCategories inspection.NameSet
	Force              bool // notify on every breakdown regardless of category

	logger *zap.Logger
}

func NewDispatcher(from string, recipients []string, transports []Sender, critical inspection.NameSet, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		From:               from,
		Recipients:         recipients,
		Transports:         transports,
		CriticalCategories: critical,
		logger:             logger,
	}
}

// Dispatch implements lifecycle.Notifier for accepted transaction records.
func (d *Dispatcher) Dispatch(ctx context.Context, rec ledger.Record) {
	if !rec.Broken() {
		return
	}
	if !d.Force && !d.CriticalCategories.Has(rec.Category) && !d.CriticalCategories.Has(rec.AssetKey) {
		return
	}
	msg := Message{
		Subject: fmt.Sprintf("Equipment Broken Down: %s", rec.AssetKey),
		Body:    transactionBody(rec),
	}
	d.deliver(ctx, msg)
}

// InspectionAlert notifies for a validated checklist entry with a
// critical break.
func (d *Dispatcher) InspectionAlert(ctx context.Context, e inspection.Entry) {
	if !e.CriticalBreak {
		return
	}
	msg := Message{
		Subject:     fmt.Sprintf("%s Broken Down", e.Submission.Subject),
		Body:        inspectionBody(e),
		Attachments: []string{e.Submission.PhotoPath, e.Submission.SignaturePath},
	}
	d.deliver(ctx, msg)
}

// deliver walks the transport list until one succeeds. Best effort only.
func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	if len(d.Recipients) == 0 || len(d.Transports) == 0 {
		d.logger.Debug("alert skipped: no recipients or transports configured",
			zap.String("subject", msg.Subject))
		return
	}
	for _, transport := range d.Transports {
		err := transport.Send(ctx, d.From, d.Recipients, msg)
		if err == nil {
			d.logger.Info("alert delivered",
				zap.String("subject", msg.Subject),
				zap.String("transport", transport.Name()))
			return
		}
		d.logger.Warn("alert transport failed, trying next",
			zap.String("subject", msg.Subject),
			zap.String("transport", transport.Name()),
			zap.Error(err))
	}
	d.logger.Error("alert undeliverable on all transports",
		zap.String("subject", msg.Subject),
		zap.Int("transports", len(d.Transports)))
}

// =============================================================================
// MESSAGE BODIES
// =============================================================================

func transactionBody(rec ledger.Record) string {
	when := "unknown time"
	if rec.HasTimestamp() {
		when = rec.OccurredAt.Format("2006-01-02 15:04:05")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Equipment %s reported Broken Down by %s.\n\n", rec.AssetKey, rec.Actor)
	fmt.Fprintf(&b, "Record:\n")
	fmt.Fprintf(&b, "  Sequence:    %d\n", rec.Sequence)
	fmt.Fprintf(&b, "  Time:        %s\n", when)
	fmt.Fprintf(&b, "  Category:    %s\n", rec.Category)
	fmt.Fprintf(&b, "  Transaction: %s\n", rec.Direction)
	fmt.Fprintf(&b, "  Status:      %s\n", rec.Condition)
	fmt.Fprintf(&b, "  Comments:    %s\n", rec.Comment)
	return b.String()
}

func inspectionBody(e inspection.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is broken down. Inspection by %s on %s.\n\n",
		e.Submission.Subject, e.Submission.Operator, e.Submission.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Broken items:\n")
	byName := make(map[string]inspection.Item, len(e.Submission.Items))
	for _, item := range e.Submission.Items {
		byName[item.Name] = item
	}
	for _, name := range e.BrokenItems {
		fmt.Fprintf(&b, "  - %s: %s\n", name, byName[name].Comment)
	}
	fmt.Fprintf(&b, "\nOperation hours: %s\n", e.Submission.OperationHours.String())
	return b.String()
}
