package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pbs/booking-service/config"
	"github.com/pbs/booking-service/model"
	"github.com/pbs/booking-service/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store implements repository.Store on top of GORM/PostgreSQL.
type Store struct {
	db *gorm.DB
}

func NewStore(cfg *config.Database) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	// Auto-migrate the booking tables
	if err := db.AutoMigrate(
		&model.Show{},
		&model.SeatInventory{},
		&model.Booking{},
		&model.BookingSeat{},
		&model.OutboxEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Within runs fn with every repository bound to one transaction. fn
// returning an error rolls the whole unit back.
func (s *Store) Within(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepos{db: tx})
	})
}

// Reads returns repositories bound to the plain connection.
func (s *Store) Reads() repository.Tx {
	return &txRepos{db: s.db}
}

// DB returns the database instance for health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

// txRepos binds the aggregate repositories to one *gorm.DB, which is either
// an open transaction or the pooled connection.
type txRepos struct {
	db *gorm.DB
}

func (t *txRepos) Bookings() repository.BookingRepository {
	return &bookingRepository{db: t.db}
}

func (t *txRepos) Seats() repository.SeatInventoryRepository {
	return &seatInventoryRepository{db: t.db}
}

func (t *txRepos) Shows() repository.ShowRepository {
	return &showRepository{db: t.db}
}

func (t *txRepos) Outbox() repository.OutboxRepository {
	return &outboxRepository{db: t.db}
}
