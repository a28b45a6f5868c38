package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/outbox/registry"
)

// verdict is what happens to a row after one publish attempt.
type verdict int

const (
	verdictPublished verdict = iota
	verdictRetry
	verdictPark
)

// processBatch reports whether any rows were claimed. Publish failures
// are recorded on their rows; only bookkeeping failures abort the batch.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	claimed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		claimed = len(rows) > 0
		for _, row := range rows {
			logCtx, v, cause := s.attempt(ctx, row)
			if err := s.record(logCtx, tx, row, v, cause); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

// attempt resolves and publishes one row. The returned context carries
// the row's log fields.
func (s *Service) attempt(ctx context.Context, row models.OutboxEvent) (context.Context, verdict, error) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"outbox_id":     row.ID.String(),
		"event_type":    row.EventType,
		"aggregate_id":  row.AggregateID.String(),
		"attempt_count": row.AttemptCount,
	})

	resolved, err := s.registry.Resolve(row)
	if err != nil {
		s.metrics.OutboxPublished(string(row.EventType), err)
		return logCtx, verdictPark, fmt.Errorf("unresolvable: %w", err)
	}
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event_id": resolved.Envelope.EventID,
		"topic":    resolved.Descriptor.Topic,
	})

	err = s.publish(ctx, row, resolved)
	s.metrics.OutboxPublished(string(row.EventType), err)
	var permanent registry.NonRetryableError
	switch {
	case err == nil:
		return logCtx, verdictPublished, nil
	case errors.As(err, &permanent):
		return logCtx, verdictPark, err
	case row.AttemptCount+1 >= s.maxAttempts:
		return logCtx, verdictPark, fmt.Errorf("gave up after %d attempts: %w", row.AttemptCount+1, err)
	default:
		return logCtx, verdictRetry, err
	}
}

func (s *Service) record(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, v verdict, cause error) error {
	switch v {
	case verdictPublished:
		if err := s.repo.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		s.logg.Info(ctx, "outbox.published")
	case verdictRetry:
		s.logg.Warn(s.logg.WithField(ctx, "error", cause.Error()), "outbox.publish_failed")
		if err := s.repo.MarkFailedTx(tx, row.ID, cause); err != nil {
			return fmt.Errorf("mark %s failed: %w", row.ID, err)
		}
	case verdictPark:
		s.logg.Warn(s.logg.WithField(ctx, "error", cause.Error()), "outbox.parked")
		if err := s.repo.MarkTerminalTx(tx, row.ID, cause, s.maxAttempts); err != nil {
			return fmt.Errorf("park %s: %w", row.ID, err)
		}
	}
	return nil
}

// publish forwards the stored envelope byte for byte; attributes let
// subscribers filter without decoding it.
func (s *Service) publish(ctx context.Context, row models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %q", topic))
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if result == nil {
		return registry.NewNonRetryableError(errNoResult)
	}
	_, err := result.Get(ctx)
	return err
}
