package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/pbs/booking-service/model"
	"gorm.io/gorm"
)

type seatInventoryRepository struct {
	db *gorm.DB
}

// FindByShowAndNumbers resolves seat numbers to inventory rows for one show.
// Callers compare the returned count against the requested count to detect
// seat numbers that do not exist.
func (r *seatInventoryRepository) FindByShowAndNumbers(ctx context.Context, showID string, seatNumbers []string) ([]model.SeatInventory, error) {
	var seats []model.SeatInventory
	err := r.db.WithContext(ctx).
		Where("show_id = ? AND seat_number IN ?", showID, seatNumbers).
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find seats: %w", err)
	}
	return seats, nil
}

// FindByIDs fetches current inventory rows. Always used instead of values
// cached on a booking, since price and status can change underneath it.
func (r *seatInventoryRepository) FindByIDs(ctx context.Context, ids []string) ([]model.SeatInventory, error) {
	var seats []model.SeatInventory
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find seats by ids: %w", err)
	}
	return seats, nil
}

// UpdateStatus flips the durable status of the given seats.
func (r *seatInventoryRepository) UpdateStatus(ctx context.Context, ids []string, status string) error {
	err := r.db.WithContext(ctx).
		Model(&model.SeatInventory{}).
		Where("id IN ?", ids).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update seat statuses: %w", err)
	}
	return nil
}

type showRepository struct {
	db *gorm.DB
}

// GetByID retrieves a show by its ID
func (r *showRepository) GetByID(ctx context.Context, showID string) (*model.Show, error) {
	var show model.Show
	err := r.db.WithContext(ctx).Where("id = ?", showID).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewError(model.ErrNotFound, "show not found")
		}
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return &show, nil
}

// DecrementAvailableSeats reduces the show's available count in place, so
// concurrent confirms on the same show never lose an update.
func (r *showRepository) DecrementAvailableSeats(ctx context.Context, showID string, count int) error {
	err := r.db.WithContext(ctx).
		Model(&model.Show{}).
		Where("id = ?", showID).
		Update("available_seats", gorm.Expr("available_seats - ?", count)).Error
	if err != nil {
		return fmt.Errorf("failed to decrement available seats: %w", err)
	}
	return nil
}
