package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pbs/booking-service/model"
	"gorm.io/gorm"
)

type outboxRepository struct {
	db *gorm.DB
}

// Save persists an outbox event. Called inside the same transaction as the
// booking mutation the event describes.
func (r *outboxRepository) Save(ctx context.Context, event *model.OutboxEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}

// FindPending returns undelivered events oldest first. FAILED events are
// included so a failed publish is retried on the next run instead of being
// stuck forever.
func (r *outboxRepository) FindPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("event_status IN ?", []string{model.OutboxStatusPending, model.OutboxStatusFailed}).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending outbox events: %w", err)
	}
	return events, nil
}

// MarkSent records successful delivery.
func (r *outboxRepository) MarkSent(ctx context.Context, eventID string, processedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"event_status": model.OutboxStatusSent,
			"processed_at": processedAt,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure. The event stays retryable.
func (r *outboxRepository) MarkFailed(ctx context.Context, eventID string) error {
	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"event_status": model.OutboxStatusFailed,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark outbox event failed: %w", err)
	}
	return nil
}
