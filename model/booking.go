package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// DATABASE ENTITIES (Internal - GORM owns these tables)
// ============================================================================

// Booking lifecycle states. CONFIRMED_BOOKING and EXPIRED_BOOKING are
// terminal - a booking is never mutated again after reaching either.
const (
	BookingStatusPendingPayment = "PENDING_PAYMENT"
	BookingStatusConfirmed      = "CONFIRMED_BOOKING"
	BookingStatusExpired        = "EXPIRED_BOOKING"
)

// Seat inventory states. The durable truth about a seat; the Redis lock is
// only a transient guard layered on top during the reservation window.
const (
	SeatStatusAvailable = "AVAILABLE"
	SeatStatusBooked    = "BOOKED"
)

// Per-seat booking states, mirroring the parent booking's lifecycle.
const (
	BookingSeatStatusPending = "PENDING"
	BookingSeatStatusBooked  = "BOOKED"
	BookingSeatStatusExpired = "EXPIRED"
)

// Show represents a scheduled screening with sellable capacity.
// AvailableSeats is decremented only on booking confirmation, never at
// initiation.
type Show struct {
	ID             string          `gorm:"primary_key;default:gen_random_uuid()" json:"id"`
	MovieID        string          `gorm:"not null;index" json:"movie_id"`
	TheatreID      string          `gorm:"not null;index" json:"theatre_id"`
	ShowTime       time.Time       `gorm:"not null" json:"show_time"`
	EndTime        time.Time       `gorm:"not null" json:"end_time"`
	TotalSeats     int             `gorm:"not null" json:"total_seats"`
	AvailableSeats int             `gorm:"not null" json:"available_seats"`
	BasePrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Status         string          `gorm:"type:varchar(20);not null" json:"status"`
}

// TableName sets the table name for GORM
func (Show) TableName() string {
	return "shows"
}

// SeatInventory is one sellable seat of one show.
type SeatInventory struct {
	ID         string          `gorm:"primary_key;default:gen_random_uuid()" json:"id"`
	ShowID     string          `gorm:"not null;index:idx_show_seat,unique" json:"show_id"`
	SeatNumber string          `gorm:"type:varchar(10);not null;index:idx_show_seat,unique" json:"seat_number"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Status     string          `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
}

// TableName sets the table name for GORM
func (SeatInventory) TableName() string {
	return "seat_inventory"
}

// Booking is one user's reservation of a seat set for one show. The
// BookingReference is a ULID: globally unique, human-readable and
// lexicographically sortable by creation time.
type Booking struct {
	ID               string          `gorm:"primary_key;default:gen_random_uuid()" json:"id"`
	BookingReference string          `gorm:"type:varchar(26);uniqueIndex;not null" json:"booking_reference"`
	UserID           string          `gorm:"not null;index" json:"user_id"`
	ShowID           string          `gorm:"not null;index" json:"show_id"`
	Status           string          `gorm:"type:varchar(20);not null" json:"status"`
	BaseAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_amount"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	FinalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_amount"`
	BookingTime      time.Time       `gorm:"not null" json:"booking_time"`
	ExpiryTime       time.Time       `gorm:"not null;index" json:"expiry_time"`

	BookingSeats []BookingSeat `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking_seats"`
}

// TableName sets the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// SeatInventoryIDs returns the referenced seat inventory ids. Bookings hold
// seat references by id, not live rows - callers re-fetch the inventory when
// current price or status matters.
func (b *Booking) SeatInventoryIDs() []string {
	ids := make([]string, 0, len(b.BookingSeats))
	for _, bs := range b.BookingSeats {
		ids = append(ids, bs.SeatInventoryID)
	}
	return ids
}

// IsExpiredAt reports whether the reservation window has lapsed at t.
func (b *Booking) IsExpiredAt(t time.Time) bool {
	return b.ExpiryTime.Before(t)
}

// BookingSeat links a booking to one seat it reserved. Owned exclusively by
// its booking and cascade-deleted with it.
type BookingSeat struct {
	ID              string          `gorm:"primary_key;default:gen_random_uuid()" json:"id"`
	BookingID       string          `gorm:"not null;index" json:"booking_id"`
	SeatInventoryID string          `gorm:"not null" json:"seat_inventory_id"`
	PricePaid       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_paid"`
	Status          string          `gorm:"type:varchar(20);not null" json:"status"`
}

// TableName sets the table name for GORM
func (BookingSeat) TableName() string {
	return "booking_seats"
}
