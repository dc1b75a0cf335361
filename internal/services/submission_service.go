package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"dataentry/internal/amqp"
	"dataentry/internal/core"
	"dataentry/internal/log"
	"dataentry/internal/sheets"
)

// Publisher sends submission events to the broker.
type Publisher interface {
	PublishEntrySubmitted(ctx context.Context, msg *amqp.EntrySubmittedMessage) error
	Close() error
}

// SubmissionService announces accepted submissions. Without a publisher it
// only counts them.
type SubmissionService struct {
	publisher Publisher
	logger    *log.Logger

	submitted atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
}

var _ sheets.SubmissionNotifier = (*SubmissionService)(nil)

func NewSubmissionService(publisher Publisher, logger *log.Logger) *SubmissionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &SubmissionService{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
	}
}

// NotifySubmitted publishes an entry submitted event.
func (s *SubmissionService) NotifySubmitted(ctx context.Context, sessionID string, e core.FormEntry) error {
	s.submitted.Add(1)

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping submission event")
		return nil
	}

	if err := s.publisher.PublishEntrySubmitted(ctx, amqp.NewEntrySubmittedMessage(sessionID, e)); err != nil {
		s.failed.Add(1)
		return fmt.Errorf("publish submission: %w", err)
	}
	s.published.Add(1)
	return nil
}

// Stats reports how many submissions were seen, published and failed.
type Stats struct {
	Submitted int64
	Published int64
	Failed    int64
}

func (s *SubmissionService) Stats() Stats {
	return Stats{
		Submitted: s.submitted.Load(),
		Published: s.published.Load(),
		Failed:    s.failed.Load(),
	}
}

// Close closes the publisher, if any.
func (s *SubmissionService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close submission service: %w", err)
	}
	return nil
}
