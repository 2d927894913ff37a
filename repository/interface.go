package repository

import (
	"context"
	"time"

	"github.com/pbs/booking-service/model"
	"gorm.io/gorm"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, bookingID string) (*model.Booking, error)
	// GetByIDForUpdate fetches the booking under a row lock. Confirm and
	// expire take it so a concurrent transition on the same booking
	// serializes and the loser sees the terminal state.
	GetByIDForUpdate(ctx context.Context, bookingID string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	// FindExpired returns PENDING_PAYMENT bookings whose expiry time has
	// passed, seats preloaded.
	FindExpired(ctx context.Context, now time.Time) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, status string) error
	UpdateSeatStatuses(ctx context.Context, bookingID, status string) error
}

// SeatInventoryRepository defines the interface for seat inventory operations
type SeatInventoryRepository interface {
	FindByShowAndNumbers(ctx context.Context, showID string, seatNumbers []string) ([]model.SeatInventory, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.SeatInventory, error)
	UpdateStatus(ctx context.Context, ids []string, status string) error
}

// ShowRepository defines the interface for show operations
type ShowRepository interface {
	GetByID(ctx context.Context, showID string) (*model.Show, error)
	// DecrementAvailableSeats atomically reduces the show's available count.
	DecrementAvailableSeats(ctx context.Context, showID string, count int) error
}

// OutboxRepository defines the interface for the transactional outbox
type OutboxRepository interface {
	Save(ctx context.Context, event *model.OutboxEvent) error
	// FindPending returns up to limit undelivered events (PENDING or FAILED),
	// oldest first so no event starves.
	FindPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkSent(ctx context.Context, eventID string, processedAt time.Time) error
	MarkFailed(ctx context.Context, eventID string) error
}

// Tx exposes every repository bound to one open transaction.
type Tx interface {
	Bookings() BookingRepository
	Seats() SeatInventoryRepository
	Shows() ShowRepository
	Outbox() OutboxRepository
}

// UnitOfWork runs a function with all repositories sharing one transaction.
// A lifecycle transition and its outbox row always go through Within so a
// crash mid-transition is never observable.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(tx Tx) error) error
	// Reads returns repositories bound to the plain connection, for
	// single-statement reads that need no transaction.
	Reads() Tx
}

// Store is the full persistence surface handed to the service layer.
type Store interface {
	UnitOfWork
	// DB exposes the underlying handle for health checks.
	DB() *gorm.DB
}
