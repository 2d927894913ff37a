package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pbs/booking-service/model"
	"github.com/redis/go-redis/v9"
)

// SeatLockManager implements lock.SeatLocker on Redis. SET NX with a TTL is
// the whole mechanism: at most one holder per seat key, and the store
// expires abandoned locks without any cleanup pass.
type SeatLockManager struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatLockManager(client *redis.Client, ttl time.Duration) *SeatLockManager {
	return &SeatLockManager{
		client: client,
		ttl:    ttl,
	}
}

func (m *SeatLockManager) lockKey(seatID string) string {
	return fmt.Sprintf("seat:lock:%s", seatID)
}

// Lock acquires the advisory lock for one seat. The caller must have
// verified the seat's durable status is AVAILABLE first.
func (m *SeatLockManager) Lock(ctx context.Context, seatID, userID string) error {
	acquired, err := m.client.SetNX(ctx, m.lockKey(seatID), userID, m.ttl).Result()
	if err != nil {
		return model.WrapError(model.ErrLock, err, "failed to acquire lock for seat %s", seatID)
	}
	if !acquired {
		return model.NewError(model.ErrSeatUnavailable, "seat %s is locked by another user", seatID)
	}
	return nil
}

// Unlock deletes the seat's lock key. Deleting a key that has already
// expired or was never set is not an error.
func (m *SeatLockManager) Unlock(ctx context.Context, seatID string) error {
	if err := m.client.Del(ctx, m.lockKey(seatID)).Err(); err != nil {
		return model.WrapError(model.ErrLock, err, "failed to release lock for seat %s", seatID)
	}
	return nil
}
