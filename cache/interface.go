package cache

import (
	"context"
	"time"
)

// BookingCache maps a booking reference to its booking id for fast external
// lookup during the reservation window. Not authoritative - the database is.
type BookingCache interface {
	SetBookingRef(ctx context.Context, reference, bookingID string, ttl time.Duration) error
	GetBookingRef(ctx context.Context, reference string) (string, error)

	// Health check
	Ping(ctx context.Context) error
}
