package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type BookingCache struct {
	client *redis.Client
}

func NewBookingCache(client *redis.Client) *BookingCache {
	return &BookingCache{client: client}
}

// Cache key generator
func (c *BookingCache) bookingRefKey(reference string) string {
	return fmt.Sprintf("BOOKING:%s", reference)
}

// SetBookingRef stores the reference -> booking id mapping with the
// reservation-window TTL.
func (c *BookingCache) SetBookingRef(ctx context.Context, reference, bookingID string, ttl time.Duration) error {
	return c.client.Set(ctx, c.bookingRefKey(reference), bookingID, ttl).Err()
}

// GetBookingRef resolves a booking reference to a booking id. A cache miss
// returns an empty id and no error.
func (c *BookingCache) GetBookingRef(ctx context.Context, reference string) (string, error) {
	id, err := c.client.Get(ctx, c.bookingRefKey(reference)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // Cache miss
		}
		return "", err
	}
	return id, nil
}

// Ping checks if Redis is healthy
func (c *BookingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
