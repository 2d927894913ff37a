// Package bus abstracts the message broker behind a publish-only interface.
package bus

import (
	"context"
	"fmt"

	"github.com/pbs/booking-service/model"
)

// Publisher delivers one payload to one topic. Delivery is at-least-once;
// consistency with local state comes from the outbox, not from the broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// TopicMap is the fixed event-type -> topic mapping. Topic names are an
// external contract and must stay stable once chosen.
type TopicMap struct {
	BookingInitiated string
	BookingConfirmed string
	BookingExpired   string
}

// Resolve maps an outbox event type to its topic. An unknown event type is a
// configuration error, not a per-event delivery failure.
func (m TopicMap) Resolve(eventType string) (string, error) {
	switch eventType {
	case model.EventTypeBookingInitiated:
		return m.BookingInitiated, nil
	case model.EventTypeBookingConfirmed:
		return m.BookingConfirmed, nil
	case model.EventTypeBookingExpired:
		return m.BookingExpired, nil
	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
}
