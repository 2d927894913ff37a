// Package lock provides the per-seat advisory lock closing the race window
// between a seat's availability check and the booking row becoming durable.
// A lock is never the source of truth - seat_inventory.status is - and its
// TTL equals the reservation window, so a crashed holder self-heals.
package lock

import "context"

// SeatLocker is a short-TTL distributed mutex per seat.
type SeatLocker interface {
	// Lock acquires the seat for userID. It fails when the seat is already
	// held by another user (ErrSeatUnavailable) or when the lock store itself
	// fails (ErrLock) - never silently.
	Lock(ctx context.Context, seatID, userID string) error
	// Unlock releases the seat. Idempotent: releasing an absent or expired
	// lock is a no-op.
	Unlock(ctx context.Context, seatID string) error
}
