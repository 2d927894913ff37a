package model

import "time"

// Outbox event types, one per booking lifecycle transition.
const (
	EventTypeBookingInitiated = "BOOKING_INITIATED"
	EventTypeBookingConfirmed = "BOOKING_CONFIRMED"
	EventTypeBookingExpired   = "BOOKING_EXPIRED"
)

// Outbox delivery states. FAILED events stay in the pending pool and are
// retried on later publisher runs; only SENT removes an event from it.
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// AggregateTypeBooking is the only aggregate this service emits events for.
const AggregateTypeBooking = "BOOKING"

// OutboxEvent is a domain event pending delivery to the message bus. A row
// is always written in the same transaction as the booking mutation it
// describes, which is what keeps delivery consistent with local state even
// though the bus itself is at-least-once.
type OutboxEvent struct {
	ID            string     `gorm:"primary_key;default:gen_random_uuid()" json:"id"`
	AggregateType string     `gorm:"type:varchar(20);not null" json:"aggregate_type"`
	AggregateID   string     `gorm:"type:varchar(26);not null;index" json:"aggregate_id"`
	EventType     string     `gorm:"type:varchar(30);not null" json:"event_type"`
	Payload       string     `gorm:"type:text;not null" json:"payload"`
	EventStatus   string     `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"event_status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// TableName sets the table name for GORM
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
