package worker

import (
	"context"
	"slices"
	"sync/atomic"

	"dataentry/internal/amqp"
	"dataentry/internal/log"
	"dataentry/internal/sheets"
)

// AuditWorker records submission events and flags entries whose categories
// are not in the current option set.
type AuditWorker struct {
	taxonomy sheets.TaxonomyReader
	logger   *log.Logger

	handled atomic.Int64
	flagged atomic.Int64
}

func NewAuditWorker(taxonomy sheets.TaxonomyReader, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{
		taxonomy: taxonomy,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEntrySubmitted processes a single submission event. Option lookups
// that fail are logged and never requeue the event.
func (w *AuditWorker) HandleEntrySubmitted(ctx context.Context, msg *amqp.EntrySubmittedMessage) error {
	w.handled.Add(1)

	w.logger.InfoContext(ctx, "Entry submitted",
		log.FieldSessionID, msg.SessionID,
		log.FieldEntryDate, msg.Date,
		log.FieldEntryTime, msg.Time,
		log.FieldCategory, msg.Category,
		log.FieldSubCategory, msg.SubCategory,
		log.FieldItemName, msg.ItemName,
		log.FieldQuantity, msg.Quantity,
		log.FieldTotalPrice, msg.TotalPrice,
		"submitted_at", msg.Timestamp)

	if w.taxonomy == nil {
		return nil
	}

	cats, subs, err := w.taxonomy.List(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "Option lookup failed, skipping audit", log.FieldError, err.Error())
		return nil
	}

	if !slices.Contains(cats, msg.Category) || !slices.Contains(subs, msg.SubCategory) {
		w.flagged.Add(1)
		w.logger.WarnContext(ctx, "Entry uses an unknown option",
			log.FieldSessionID, msg.SessionID,
			log.FieldCategory, msg.Category,
			log.FieldSubCategory, msg.SubCategory)
	}
	return nil
}

// Handled returns how many events were processed.
func (w *AuditWorker) Handled() int64 { return w.handled.Load() }

// Flagged returns how many events used options outside the option set.
func (w *AuditWorker) Flagged() int64 { return w.flagged.Load() }
