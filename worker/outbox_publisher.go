// Package worker holds the periodic background tasks: the outbox publisher
// draining pending events to the bus and the expiry sweeper lapsing
// timed-out reservations. Each task is single-flight - the sequential tick
// loop never starts a run while the previous one is still going - and
// shutdown lets an in-flight batch finish.
package worker

import (
	"context"
	"time"

	"github.com/pbs/booking-service/bus"
	"github.com/pbs/booking-service/repository"
	"github.com/rs/zerolog"
)

// OutboxPublisher drains the outbox store to the message bus on a fixed
// interval, at-least-once.
type OutboxPublisher struct {
	outbox    repository.OutboxRepository
	publisher bus.Publisher
	topics    bus.TopicMap
	logger    zerolog.Logger

	interval  time.Duration
	batchSize int

	now func() time.Time
}

func NewOutboxPublisher(
	outbox repository.OutboxRepository,
	publisher bus.Publisher,
	topics bus.TopicMap,
	interval time.Duration,
	batchSize int,
	logger zerolog.Logger,
) *OutboxPublisher {
	return &OutboxPublisher{
		outbox:    outbox,
		publisher: publisher,
		topics:    topics,
		logger:    logger.With().Str("component", "outbox_publisher").Logger(),
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Start runs the publish loop until ctx is cancelled.
func (p *OutboxPublisher) Start(ctx context.Context) error {
	p.logger.Info().Dur("interval", p.interval).Int("batch_size", p.batchSize).Msg("outbox publisher started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := p.PublishBatch(ctx); err != nil {
				// Batch-level failures (the store is down) are logged and
				// retried on the next tick; they never kill the loop.
				p.logger.Error().Err(err).Msg("outbox batch failed")
			}
		}
	}
}

// PublishBatch delivers one batch of pending events. A single event's
// failure is recorded on that event and delivery continues with the next.
func (p *OutboxPublisher) PublishBatch(ctx context.Context) error {
	events, err := p.outbox.FindPending(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	for i := range events {
		event := &events[i]

		topic, err := p.topics.Resolve(event.EventType)
		if err != nil {
			// An unmapped event type means the deployment is misconfigured;
			// retrying per-event would only spin.
			return err
		}

		if err := p.publisher.Publish(ctx, topic, event.AggregateID, []byte(event.Payload)); err != nil {
			p.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("publish failed")
			if err := p.outbox.MarkFailed(ctx, event.ID); err != nil {
				p.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to record publish failure")
			}
			continue
		}

		if err := p.outbox.MarkSent(ctx, event.ID, p.now().UTC()); err != nil {
			// The event was delivered but stays non-SENT, so the next run
			// republishes it. Acceptable: delivery is at-least-once.
			p.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to mark event sent")
		}
	}
	return nil
}
