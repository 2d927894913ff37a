package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pbs/booking-service/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct {
	db *gorm.DB
}

// Create persists a booking together with its seat rows.
func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking with its seats preloaded.
func (r *bookingRepository) GetByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("BookingSeats").
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewError(model.ErrNotFound, "booking not found")
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetByIDForUpdate retrieves a booking under SELECT ... FOR UPDATE. Only
// meaningful inside a transaction.
func (r *bookingRepository) GetByIDForUpdate(ctx context.Context, bookingID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewError(model.ErrNotFound, "booking not found")
		}
		return nil, fmt.Errorf("failed to get booking for update: %w", err)
	}
	// Preload does not combine with FOR UPDATE on the parent row; fetch the
	// seat rows separately.
	err = r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Find(&booking.BookingSeats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load booking seats: %w", err)
	}
	return &booking, nil
}

// ListByUser retrieves all bookings belonging to a user, newest first.
func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("BookingSeats").
		Where("user_id = ?", userID).
		Order("booking_time DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// FindExpired returns PENDING_PAYMENT bookings whose reservation window has
// lapsed at now.
func (r *bookingRepository) FindExpired(ctx context.Context, now time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("BookingSeats").
		Where("status = ? AND expiry_time <= ?", model.BookingStatusPendingPayment, now).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus sets the booking's lifecycle status.
func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID, status string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// UpdateSeatStatuses sets the status of every seat row of a booking.
func (r *bookingRepository) UpdateSeatStatuses(ctx context.Context, bookingID, status string) error {
	err := r.db.WithContext(ctx).
		Model(&model.BookingSeat{}).
		Where("booking_id = ?", bookingID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update booking seat statuses: %w", err)
	}
	return nil
}
