// Package service holds the booking orchestrator: the owner of the
// PENDING_PAYMENT -> CONFIRMED_BOOKING / EXPIRED_BOOKING state machine.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pbs/booking-service/cache"
	"github.com/pbs/booking-service/config"
	"github.com/pbs/booking-service/lock"
	"github.com/pbs/booking-service/model"
	"github.com/pbs/booking-service/pricing"
	"github.com/pbs/booking-service/repository"
	"github.com/rs/zerolog"
)

// BookingService coordinates seat locking, pricing, persistence and the
// transactional outbox for every booking lifecycle transition.
type BookingService struct {
	store   repository.Store
	locker  lock.SeatLocker
	cache   cache.BookingCache
	pricing *pricing.Engine
	logger  zerolog.Logger

	reservationWindow time.Duration
	minSeats          int
	maxSeats          int

	// now is swappable for tests.
	now func() time.Time
}

func NewBookingService(
	store repository.Store,
	locker lock.SeatLocker,
	bookingCache cache.BookingCache,
	engine *pricing.Engine,
	cfg config.Booking,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		store:             store,
		locker:            locker,
		cache:             bookingCache,
		pricing:           engine,
		logger:            logger.With().Str("component", "booking_service").Logger(),
		reservationWindow: cfg.ReservationWindow(),
		minSeats:          cfg.MinSeatsPerBooking,
		maxSeats:          cfg.MaxSeatsPerBooking,
		now:               time.Now,
	}
}

// Initiate reserves the requested seats for the reservation window. Seat
// status in the database is not changed here - the advisory locks plus the
// PENDING_PAYMENT row are the reservation, which keeps write contention off
// the hot seat_inventory rows while many users probe the same show.
func (s *BookingService) Initiate(ctx context.Context, req model.InitiateBookingRequest) (*model.BookingResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	seats, err := s.resolveAndLockSeats(ctx, req.ShowID, req.SeatNumbers, req.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("user_id", req.UserID).
		Str("show_id", req.ShowID).
		Int("seats", len(seats)).
		Msg("seats locked")

	quote := s.pricing.Quote(seats, req.OfferCode)

	now := s.now().UTC()
	booking := &model.Booking{
		BookingReference: ulid.Make().String(),
		UserID:           req.UserID,
		ShowID:           req.ShowID,
		Status:           model.BookingStatusPendingPayment,
		BaseAmount:       quote.BaseAmount,
		DiscountAmount:   quote.DiscountAmount,
		FinalAmount:      quote.FinalAmount,
		BookingTime:      now,
		ExpiryTime:       now.Add(s.reservationWindow),
	}
	for _, seat := range seats {
		booking.BookingSeats = append(booking.BookingSeats, model.BookingSeat{
			SeatInventoryID: seat.ID,
			PricePaid:       seat.Price,
			Status:          model.BookingSeatStatusPending,
		})
	}

	err = s.store.Within(ctx, func(tx repository.Tx) error {
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return err
		}
		event, err := s.newOutboxEvent(booking, model.EventTypeBookingInitiated)
		if err != nil {
			return err
		}
		return tx.Outbox().Save(ctx, event)
	})
	if err != nil {
		// The reservation did not become durable, so give the seats back
		// instead of waiting out the lock TTL.
		s.unlockSeats(ctx, seats)
		return nil, model.WrapError(model.ErrInfrastructure, err, "failed to persist booking")
	}

	if err := s.cache.SetBookingRef(ctx, booking.BookingReference, booking.ID, s.reservationWindow); err != nil {
		// The cache is a convenience lookup, not authoritative.
		s.logger.Warn().Err(err).Str("booking_reference", booking.BookingReference).Msg("failed to cache booking reference")
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("booking_reference", booking.BookingReference).
		Str("user_id", req.UserID).
		Msg("booking initiated")
	return model.NewBookingResponse(booking, seats), nil
}

// Confirm settles a PENDING_PAYMENT booking into a sale. Seat flips, show
// counter, booking state and the outbox row commit as one transaction; a
// crash in between is never observable.
func (s *BookingService) Confirm(ctx context.Context, bookingID string) error {
	var seats []model.SeatInventory

	err := s.store.Within(ctx, func(tx repository.Tx) error {
		booking, err := tx.Bookings().GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusPendingPayment {
			return model.NewError(model.ErrInvalidState,
				"booking %s is %s, not awaiting payment", booking.BookingReference, booking.Status)
		}
		if booking.IsExpiredAt(s.now().UTC()) {
			// Allowing confirmation past the window would undo the TTL-based
			// seat-release guarantee.
			return model.NewError(model.ErrInvalidState,
				"reservation window for booking %s has passed", booking.BookingReference)
		}

		seatIDs := booking.SeatInventoryIDs()
		seats, err = tx.Seats().FindByIDs(ctx, seatIDs)
		if err != nil {
			return err
		}

		if err := tx.Seats().UpdateStatus(ctx, seatIDs, model.SeatStatusBooked); err != nil {
			return err
		}
		if err := tx.Shows().DecrementAvailableSeats(ctx, booking.ShowID, len(seatIDs)); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateStatus(ctx, booking.ID, model.BookingStatusConfirmed); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateSeatStatuses(ctx, booking.ID, model.BookingSeatStatusBooked); err != nil {
			return err
		}

		booking.Status = model.BookingStatusConfirmed
		for i := range booking.BookingSeats {
			booking.BookingSeats[i].Status = model.BookingSeatStatusBooked
		}
		event, err := s.newOutboxEvent(booking, model.EventTypeBookingConfirmed)
		if err != nil {
			return err
		}
		return tx.Outbox().Save(ctx, event)
	})
	if err != nil {
		return err
	}

	// Locks are advisory; releasing after commit is safe and a failed
	// release just waits out the TTL.
	s.unlockSeats(ctx, seats)

	s.logger.Info().Str("booking_id", bookingID).Msg("booking confirmed")
	return nil
}

// ExpireDue drives every lapsed PENDING_PAYMENT booking through the expire
// transition. Bookings fail independently; the first error does not stop
// the rest. Returns how many bookings were expired.
func (s *BookingService) ExpireDue(ctx context.Context) (int, error) {
	bookings, err := s.store.Reads().Bookings().FindExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if len(bookings) == 0 {
		return 0, nil
	}

	s.logger.Info().Int("count", len(bookings)).Msg("expiring lapsed bookings")
	expired := 0
	for i := range bookings {
		if err := s.expireBooking(ctx, bookings[i].ID); err != nil {
			s.logger.Error().Err(err).
				Str("booking_id", bookings[i].ID).
				Msg("failed to expire booking")
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *BookingService) expireBooking(ctx context.Context, bookingID string) error {
	var seats []model.SeatInventory

	err := s.store.Within(ctx, func(tx repository.Tx) error {
		booking, err := tx.Bookings().GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		// A confirm that won the race leaves the booking terminal; nothing
		// to do then.
		if booking.Status != model.BookingStatusPendingPayment {
			return nil
		}
		if !booking.IsExpiredAt(s.now().UTC()) {
			return nil
		}

		seats, err = tx.Seats().FindByIDs(ctx, booking.SeatInventoryIDs())
		if err != nil {
			return err
		}

		// Seat inventory stays AVAILABLE - it was never flipped at initiate.
		if err := tx.Bookings().UpdateStatus(ctx, booking.ID, model.BookingStatusExpired); err != nil {
			return err
		}
		if err := tx.Bookings().UpdateSeatStatuses(ctx, booking.ID, model.BookingSeatStatusExpired); err != nil {
			return err
		}

		booking.Status = model.BookingStatusExpired
		for i := range booking.BookingSeats {
			booking.BookingSeats[i].Status = model.BookingSeatStatusExpired
		}
		event, err := s.newOutboxEvent(booking, model.EventTypeBookingExpired)
		if err != nil {
			return err
		}
		return tx.Outbox().Save(ctx, event)
	})
	if err != nil {
		return err
	}

	s.unlockSeats(ctx, seats)
	return nil
}

// GetByID fetches a booking for its owner. A booking that exists but
// belongs to someone else answers not-found - ownership is an authorization
// boundary and existence must not leak.
func (s *BookingService) GetByID(ctx context.Context, bookingID, userID string) (*model.BookingResponse, error) {
	booking, err := s.store.Reads().Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, model.NewError(model.ErrNotFound, "booking not found")
	}

	seats, err := s.store.Reads().Seats().FindByIDs(ctx, booking.SeatInventoryIDs())
	if err != nil {
		return nil, err
	}
	return model.NewBookingResponse(booking, seats), nil
}

// ListByUser returns all of a user's bookings, newest first.
func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]model.BookingResponse, error) {
	bookings, err := s.store.Reads().Bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, model.NewError(model.ErrNotFound, "no bookings found for user")
	}

	responses := make([]model.BookingResponse, 0, len(bookings))
	for i := range bookings {
		seats, err := s.store.Reads().Seats().FindByIDs(ctx, bookings[i].SeatInventoryIDs())
		if err != nil {
			return nil, err
		}
		responses = append(responses, *model.NewBookingResponse(&bookings[i], seats))
	}
	return responses, nil
}

func (s *BookingService) validateRequest(req model.InitiateBookingRequest) error {
	if req.UserID == "" {
		return model.NewError(model.ErrValidation, "user id is required")
	}
	if req.ShowID == "" {
		return model.NewError(model.ErrValidation, "show id is required")
	}
	if len(req.SeatNumbers) < s.minSeats || len(req.SeatNumbers) > s.maxSeats {
		return model.NewError(model.ErrValidation,
			"number of seats must be between %d and %d", s.minSeats, s.maxSeats)
	}
	for _, n := range req.SeatNumbers {
		if n == "" {
			return model.NewError(model.ErrValidation, "seat numbers must not be blank")
		}
	}
	return nil
}

// resolveAndLockSeats fetches the requested inventory rows, verifies each is
// AVAILABLE and takes its advisory lock. On the first failure every lock
// already taken by this call is released before the error propagates.
func (s *BookingService) resolveAndLockSeats(ctx context.Context, showID string, seatNumbers []string, userID string) ([]model.SeatInventory, error) {
	seats, err := s.store.Reads().Seats().FindByShowAndNumbers(ctx, showID, seatNumbers)
	if err != nil {
		return nil, model.WrapError(model.ErrInfrastructure, err, "failed to resolve seats")
	}
	if len(seats) != len(seatNumbers) {
		return nil, model.NewError(model.ErrValidation,
			"requested %d seats but only %d exist for this show", len(seatNumbers), len(seats))
	}

	locked := make([]model.SeatInventory, 0, len(seats))
	for _, seat := range seats {
		if seat.Status != model.SeatStatusAvailable {
			s.unlockSeats(ctx, locked)
			return nil, model.NewError(model.ErrSeatUnavailable, "seat %s is not available", seat.SeatNumber)
		}
		if err := s.locker.Lock(ctx, seat.ID, userID); err != nil {
			s.unlockSeats(ctx, locked)
			return nil, err
		}
		locked = append(locked, seat)
	}
	return seats, nil
}

func (s *BookingService) unlockSeats(ctx context.Context, seats []model.SeatInventory) {
	for _, seat := range seats {
		if err := s.locker.Unlock(ctx, seat.ID); err != nil {
			// TTL expiry is the backstop for locks we fail to release.
			s.logger.Warn().Err(err).Str("seat_id", seat.ID).Msg("failed to release seat lock")
		}
	}
}

func (s *BookingService) newOutboxEvent(booking *model.Booking, eventType string) (*model.OutboxEvent, error) {
	envelope := model.BookingEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		EventTime: s.now().UTC(),
		Booking:   booking,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize booking event: %w", err)
	}
	return &model.OutboxEvent{
		AggregateType: model.AggregateTypeBooking,
		AggregateID:   booking.BookingReference,
		EventType:     eventType,
		Payload:       string(payload),
		EventStatus:   model.OutboxStatusPending,
	}, nil
}
