package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pbs/booking-service/config"
	"github.com/pbs/booking-service/model"
	"github.com/pbs/booking-service/pricing"
	"github.com/pbs/booking-service/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ----------------------------------------------------------------------------
// In-memory store. Within snapshots the state and restores it when the
// function fails, mirroring transaction rollback, so the tests can assert
// that partial writes are never observable.
// ----------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	seats    map[string]*model.SeatInventory
	shows    map[string]*model.Show
	events   []model.OutboxEvent

	nextID int

	failBookingCreate   bool
	failStatusUpdateFor string
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[string]*model.Booking{},
		seats:    map[string]*model.SeatInventory{},
		shows:    map[string]*model.Show{},
	}
}

func (s *memStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) addShow(id string, available int) {
	s.shows[id] = &model.Show{
		ID:             id,
		MovieID:        "movie-1",
		TheatreID:      "theatre-1",
		TotalSeats:     available,
		AvailableSeats: available,
		BasePrice:      decimal.NewFromInt(10),
		Status:         "OPEN",
	}
}

func (s *memStore) addSeat(id, showID, number string, price int64, status string) {
	s.seats[id] = &model.SeatInventory{
		ID:         id,
		ShowID:     showID,
		SeatNumber: number,
		Price:      decimal.NewFromInt(price),
		Status:     status,
	}
}

func copyBooking(b *model.Booking) *model.Booking {
	cb := *b
	cb.BookingSeats = append([]model.BookingSeat(nil), b.BookingSeats...)
	return &cb
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	cp.nextID = s.nextID
	for id, b := range s.bookings {
		cp.bookings[id] = copyBooking(b)
	}
	for id, seat := range s.seats {
		cs := *seat
		cp.seats[id] = &cs
	}
	for id, show := range s.shows {
		cs := *show
		cp.shows[id] = &cs
	}
	cp.events = append([]model.OutboxEvent(nil), s.events...)
	return cp
}

func (s *memStore) restore(snap *memStore) {
	s.bookings = snap.bookings
	s.seats = snap.seats
	s.shows = snap.shows
	s.events = snap.events
	s.nextID = snap.nextID
}

func (s *memStore) Within(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) Reads() repository.Tx { return s }
func (s *memStore) DB() *gorm.DB         { return nil }

func (s *memStore) Bookings() repository.BookingRepository    { return memBookings{s} }
func (s *memStore) Seats() repository.SeatInventoryRepository { return memSeats{s} }
func (s *memStore) Shows() repository.ShowRepository          { return memShows{s} }
func (s *memStore) Outbox() repository.OutboxRepository       { return memOutbox{s} }

func (s *memStore) eventsOfType(eventType string) []model.OutboxEvent {
	var out []model.OutboxEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type memBookings struct{ s *memStore }

func (r memBookings) Create(_ context.Context, booking *model.Booking) error {
	if r.s.failBookingCreate {
		return fmt.Errorf("database unavailable")
	}
	if booking.ID == "" {
		booking.ID = r.s.id("booking")
	}
	for i := range booking.BookingSeats {
		if booking.BookingSeats[i].ID == "" {
			booking.BookingSeats[i].ID = r.s.id("bseat")
		}
		booking.BookingSeats[i].BookingID = booking.ID
	}
	r.s.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (r memBookings) get(bookingID string) (*model.Booking, error) {
	b, ok := r.s.bookings[bookingID]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, "booking not found")
	}
	return copyBooking(b), nil
}

func (r memBookings) GetByID(_ context.Context, bookingID string) (*model.Booking, error) {
	return r.get(bookingID)
}

func (r memBookings) GetByIDForUpdate(_ context.Context, bookingID string) (*model.Booking, error) {
	return r.get(bookingID)
}

func (r memBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingTime.After(out[j].BookingTime) })
	return out, nil
}

func (r memBookings) FindExpired(_ context.Context, now time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range r.s.bookings {
		if b.Status == model.BookingStatusPendingPayment && !b.ExpiryTime.After(now) {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memBookings) UpdateStatus(_ context.Context, bookingID, status string) error {
	if r.s.failStatusUpdateFor == bookingID {
		return fmt.Errorf("database unavailable")
	}
	b, ok := r.s.bookings[bookingID]
	if !ok {
		return model.NewError(model.ErrNotFound, "booking not found")
	}
	b.Status = status
	return nil
}

func (r memBookings) UpdateSeatStatuses(_ context.Context, bookingID, status string) error {
	b, ok := r.s.bookings[bookingID]
	if !ok {
		return model.NewError(model.ErrNotFound, "booking not found")
	}
	for i := range b.BookingSeats {
		b.BookingSeats[i].Status = status
	}
	return nil
}

type memSeats struct{ s *memStore }

func (r memSeats) FindByShowAndNumbers(_ context.Context, showID string, seatNumbers []string) ([]model.SeatInventory, error) {
	wanted := map[string]bool{}
	for _, n := range seatNumbers {
		wanted[n] = true
	}
	var out []model.SeatInventory
	for _, seat := range r.s.seats {
		if seat.ShowID == showID && wanted[seat.SeatNumber] {
			out = append(out, *seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (r memSeats) FindByIDs(_ context.Context, ids []string) ([]model.SeatInventory, error) {
	var out []model.SeatInventory
	for _, id := range ids {
		if seat, ok := r.s.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (r memSeats) UpdateStatus(_ context.Context, ids []string, status string) error {
	for _, id := range ids {
		if seat, ok := r.s.seats[id]; ok {
			seat.Status = status
		}
	}
	return nil
}

type memShows struct{ s *memStore }

func (r memShows) GetByID(_ context.Context, showID string) (*model.Show, error) {
	show, ok := r.s.shows[showID]
	if !ok {
		return nil, model.NewError(model.ErrNotFound, "show not found")
	}
	cs := *show
	return &cs, nil
}

func (r memShows) DecrementAvailableSeats(_ context.Context, showID string, count int) error {
	show, ok := r.s.shows[showID]
	if !ok {
		return model.NewError(model.ErrNotFound, "show not found")
	}
	show.AvailableSeats -= count
	return nil
}

type memOutbox struct{ s *memStore }

func (r memOutbox) Save(_ context.Context, event *model.OutboxEvent) error {
	if event.ID == "" {
		event.ID = r.s.id("event")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r memOutbox) FindPending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	var out []model.OutboxEvent
	for _, e := range r.s.events {
		if e.EventStatus == model.OutboxStatusPending || e.EventStatus == model.OutboxStatusFailed {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memOutbox) MarkSent(_ context.Context, eventID string, processedAt time.Time) error {
	for i := range r.s.events {
		if r.s.events[i].ID == eventID {
			r.s.events[i].EventStatus = model.OutboxStatusSent
			r.s.events[i].ProcessedAt = &processedAt
			r.s.events[i].Attempts++
		}
	}
	return nil
}

func (r memOutbox) MarkFailed(_ context.Context, eventID string) error {
	for i := range r.s.events {
		if r.s.events[i].ID == eventID {
			r.s.events[i].EventStatus = model.OutboxStatusFailed
			r.s.events[i].Attempts++
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Locker and cache fakes
// ----------------------------------------------------------------------------

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	failSeat string
	downErr  bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) Lock(_ context.Context, seatID, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.downErr {
		return model.WrapError(model.ErrLock, fmt.Errorf("redis down"), "failed to acquire lock for seat %s", seatID)
	}
	if seatID == l.failSeat {
		return model.NewError(model.ErrSeatUnavailable, "seat %s is locked by another user", seatID)
	}
	if holder, ok := l.held[seatID]; ok && holder != userID {
		return model.NewError(model.ErrSeatUnavailable, "seat %s is locked by another user", seatID)
	}
	l.held[seatID] = userID
	return nil
}

func (l *fakeLocker) Unlock(_ context.Context, seatID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, seatID)
	return nil
}

func (l *fakeLocker) holding() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for id := range l.held {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type fakeCache struct {
	mu   sync.Mutex
	refs map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{refs: map[string]string{}}
}

func (c *fakeCache) SetBookingRef(_ context.Context, reference, bookingID string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs[reference] = bookingID
	return nil
}

func (c *fakeCache) GetBookingRef(_ context.Context, reference string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs[reference], nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

// ----------------------------------------------------------------------------
// Fixture
// ----------------------------------------------------------------------------

var testBookingCfg = config.Booking{
	ReservationWindowMinutes: 15,
	MinSeatsPerBooking:       1,
	MaxSeatsPerBooking:       10,
}

func newTestService(store *memStore, locker *fakeLocker, c *fakeCache) *BookingService {
	return NewBookingService(store, locker, c, pricing.NewEngine(), testBookingCfg, zerolog.Nop())
}

func seedShowWithSeats(store *memStore) {
	store.addShow("show-1", 100)
	store.addSeat("seat-a1", "show-1", "A1", 10, model.SeatStatusAvailable)
	store.addSeat("seat-a2", "show-1", "A2", 20, model.SeatStatusAvailable)
	store.addSeat("seat-a3", "show-1", "A3", 5, model.SeatStatusAvailable)
	store.addSeat("seat-a4", "show-1", "A4", 30, model.SeatStatusAvailable)
}

func initiateRequest(seatNumbers ...string) model.InitiateBookingRequest {
	return model.InitiateBookingRequest{
		UserID:      "user-1",
		ShowID:      "show-1",
		SeatNumbers: seatNumbers,
	}
}

// ----------------------------------------------------------------------------
// Initiate
// ----------------------------------------------------------------------------

func TestInitiateCreatesPendingBookingWithOutboxRow(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	locker := newFakeLocker()
	cache := newFakeCache()
	svc := newTestService(store, locker, cache)

	req := initiateRequest("A1", "A2", "A3", "A4")
	req.OfferCode = pricing.OfferThirdSeat50

	resp, err := svc.Initiate(context.Background(), req)
	require.NoError(t, err)

	booking := resp.Booking
	assert.Equal(t, model.BookingStatusPendingPayment, booking.Status)
	assert.Len(t, booking.BookingSeats, 4)
	assert.Len(t, resp.SeatInventory, 4)
	assert.NotEmpty(t, booking.BookingReference)
	assert.Equal(t, booking.BookingTime.Add(15*time.Minute), booking.ExpiryTime)

	// Prices are [5, 10, 20, 30]: base 65, half of the third-cheapest is 10.
	assert.True(t, decimal.NewFromInt(65).Equal(booking.BaseAmount), "base = %s", booking.BaseAmount)
	assert.True(t, decimal.NewFromInt(10).Equal(booking.DiscountAmount), "discount = %s", booking.DiscountAmount)
	assert.True(t, decimal.NewFromInt(55).Equal(booking.FinalAmount), "final = %s", booking.FinalAmount)

	// Outbox row written in the same unit as the booking.
	initiated := store.eventsOfType(model.EventTypeBookingInitiated)
	require.Len(t, initiated, 1)
	assert.Equal(t, booking.BookingReference, initiated[0].AggregateID)
	assert.Equal(t, model.OutboxStatusPending, initiated[0].EventStatus)

	// Durable seat status is untouched at initiation.
	for _, seat := range store.seats {
		assert.Equal(t, model.SeatStatusAvailable, seat.Status)
	}

	// All four locks held, reference cached.
	assert.Equal(t, []string{"seat-a1", "seat-a2", "seat-a3", "seat-a4"}, locker.holding())
	assert.Equal(t, booking.ID, cache.refs[booking.BookingReference])
}

func TestInitiateValidation(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	cases := []struct {
		name string
		req  model.InitiateBookingRequest
	}{
		{"missing user", model.InitiateBookingRequest{ShowID: "show-1", SeatNumbers: []string{"A1"}}},
		{"missing show", model.InitiateBookingRequest{UserID: "user-1", SeatNumbers: []string{"A1"}}},
		{"no seats", initiateRequest()},
		{"too many seats", initiateRequest("A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "B1", "B2")},
		{"blank seat number", initiateRequest("A1", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Initiate(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.ErrValidation), "got %v", err)
		})
	}
}

func TestInitiateUnknownSeatNumbers(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	_, err := svc.Initiate(context.Background(), initiateRequest("A1", "Z9"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrValidation))
	assert.Empty(t, store.bookings)
}

func TestInitiateSeatNotAvailableReleasesEarlierLocks(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	store.seats["seat-a2"].Status = model.SeatStatusBooked
	locker := newFakeLocker()
	svc := newTestService(store, locker, newFakeCache())

	_, err := svc.Initiate(context.Background(), initiateRequest("A1", "A2", "A3"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrSeatUnavailable), "got %v", err)

	// The lock taken for A1 must not leak past the failure.
	assert.Empty(t, locker.holding())
	assert.Empty(t, store.bookings)
	assert.Empty(t, store.events)
}

func TestInitiateLockContestedReleasesEarlierLocks(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	locker := newFakeLocker()
	locker.failSeat = "seat-a3"
	svc := newTestService(store, locker, newFakeCache())

	_, err := svc.Initiate(context.Background(), initiateRequest("A1", "A2", "A3"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrSeatUnavailable))
	assert.Empty(t, locker.holding())
}

func TestInitiateLockStoreDownFailsClosed(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	locker := newFakeLocker()
	locker.downErr = true
	svc := newTestService(store, locker, newFakeCache())

	_, err := svc.Initiate(context.Background(), initiateRequest("A1"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrLock))
	assert.Empty(t, store.bookings)
}

func TestInitiatePersistFailureReleasesLocks(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	store.failBookingCreate = true
	locker := newFakeLocker()
	svc := newTestService(store, locker, newFakeCache())

	_, err := svc.Initiate(context.Background(), initiateRequest("A1", "A2"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrInfrastructure))
	assert.Empty(t, locker.holding())
	assert.Empty(t, store.bookings)
	assert.Empty(t, store.events)
}

func TestInitiateSameSeatTwice(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	locker := newFakeLocker()
	svc := newTestService(store, locker, newFakeCache())

	_, err := svc.Initiate(context.Background(), initiateRequest("A1"))
	require.NoError(t, err)

	second := initiateRequest("A1")
	second.UserID = "user-2"
	_, err = svc.Initiate(context.Background(), second)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrSeatUnavailable))
	require.Len(t, store.bookings, 1)
}

// ----------------------------------------------------------------------------
// Confirm
// ----------------------------------------------------------------------------

func mustInitiate(t *testing.T, svc *BookingService, seatNumbers ...string) *model.Booking {
	t.Helper()
	resp, err := svc.Initiate(context.Background(), initiateRequest(seatNumbers...))
	require.NoError(t, err)
	return resp.Booking
}

func TestConfirmSettlesBookingAtomically(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	locker := newFakeLocker()
	svc := newTestService(store, locker, newFakeCache())

	booking := mustInitiate(t, svc, "A1", "A2")

	require.NoError(t, svc.Confirm(context.Background(), booking.ID))

	stored := store.bookings[booking.ID]
	assert.Equal(t, model.BookingStatusConfirmed, stored.Status)
	for _, bs := range stored.BookingSeats {
		assert.Equal(t, model.BookingSeatStatusBooked, bs.Status)
	}
	assert.Equal(t, model.SeatStatusBooked, store.seats["seat-a1"].Status)
	assert.Equal(t, model.SeatStatusBooked, store.seats["seat-a2"].Status)
	assert.Equal(t, model.SeatStatusAvailable, store.seats["seat-a3"].Status)
	assert.Equal(t, 98, store.shows["show-1"].AvailableSeats)

	confirmed := store.eventsOfType(model.EventTypeBookingConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, booking.BookingReference, confirmed[0].AggregateID)

	// Locks are released once the sale is durable.
	assert.Empty(t, locker.holding())
}

func TestConfirmTwiceIsRejectedWithoutSideEffects(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	booking := mustInitiate(t, svc, "A1")
	require.NoError(t, svc.Confirm(context.Background(), booking.ID))

	err := svc.Confirm(context.Background(), booking.ID)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrInvalidState), "got %v", err)

	// Exactly one confirmed transition, one event, one decrement.
	assert.Len(t, store.eventsOfType(model.EventTypeBookingConfirmed), 1)
	assert.Equal(t, 99, store.shows["show-1"].AvailableSeats)
}

func TestConfirmExpiredReservationIsRejected(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	booking := mustInitiate(t, svc, "A1")

	svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	err := svc.Confirm(context.Background(), booking.ID)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrInvalidState))
	assert.Equal(t, model.BookingStatusPendingPayment, store.bookings[booking.ID].Status)
	assert.Empty(t, store.eventsOfType(model.EventTypeBookingConfirmed))
}

func TestConfirmUnknownBooking(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	err := svc.Confirm(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrNotFound))
}

// ----------------------------------------------------------------------------
// Expire
// ----------------------------------------------------------------------------

func TestExpireDueLapsesOnlyOverdueBookings(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	locker := newFakeLocker()
	svc := newTestService(store, locker, newFakeCache())

	overdue := mustInitiate(t, svc, "A1")
	fresh := mustInitiate(t, svc, "A2")

	// Push only the first booking past its window.
	store.bookings[overdue.ID].ExpiryTime = time.Now().Add(-time.Minute)

	expired, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.Equal(t, model.BookingStatusExpired, store.bookings[overdue.ID].Status)
	for _, bs := range store.bookings[overdue.ID].BookingSeats {
		assert.Equal(t, model.BookingSeatStatusExpired, bs.Status)
	}
	assert.Equal(t, model.BookingStatusPendingPayment, store.bookings[fresh.ID].Status)

	// Inventory was never flipped, so it stays AVAILABLE; the show count is
	// untouched; the overdue booking's lock is gone while the fresh one's
	// lock survives.
	assert.Equal(t, model.SeatStatusAvailable, store.seats["seat-a1"].Status)
	assert.Equal(t, 100, store.shows["show-1"].AvailableSeats)
	assert.Equal(t, []string{"seat-a2"}, locker.holding())

	events := store.eventsOfType(model.EventTypeBookingExpired)
	require.Len(t, events, 1)
	assert.Equal(t, overdue.BookingReference, events[0].AggregateID)
}

func TestExpireDueEmptySweepIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	expired, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestExpireDueOneFailureDoesNotBlockOthers(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	first := mustInitiate(t, svc, "A1")
	second := mustInitiate(t, svc, "A2")
	store.bookings[first.ID].ExpiryTime = time.Now().Add(-time.Minute)
	store.bookings[second.ID].ExpiryTime = time.Now().Add(-time.Minute)

	// Make the first booking's transition fail; the second must still lapse.
	store.failStatusUpdateFor = first.ID

	expired, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, model.BookingStatusPendingPayment, store.bookings[first.ID].Status)
	assert.Equal(t, model.BookingStatusExpired, store.bookings[second.ID].Status)
}

func TestExpireAfterConfirmLeavesBookingAlone(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	booking := mustInitiate(t, svc, "A1")
	require.NoError(t, svc.Confirm(context.Background(), booking.ID))

	// A sweep that picked up the booking before confirm committed re-checks
	// under the row lock and sees the terminal state.
	require.NoError(t, svc.expireBooking(context.Background(), booking.ID))

	assert.Equal(t, model.BookingStatusConfirmed, store.bookings[booking.ID].Status)
	assert.Empty(t, store.eventsOfType(model.EventTypeBookingExpired))
}

// ----------------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------------

func TestGetByIDReturnsOwnBooking(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	booking := mustInitiate(t, svc, "A1", "A3")

	resp, err := svc.GetByID(context.Background(), booking.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPendingPayment, resp.Booking.Status)
	assert.True(t, booking.FinalAmount.Equal(resp.Booking.FinalAmount))
	assert.Len(t, resp.SeatInventory, 2)
	assert.Len(t, resp.BookingSeats, 2)
}

func TestGetByIDHidesForeignBooking(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	booking := mustInitiate(t, svc, "A1")

	_, err := svc.GetByID(context.Background(), booking.ID, "someone-else")
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrNotFound))
}

func TestListByUser(t *testing.T) {
	store := newMemStore()
	seedShowWithSeats(store)
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	mustInitiate(t, svc, "A1")
	mustInitiate(t, svc, "A2")

	responses, err := svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, responses, 2)
}

func TestListByUserEmptyIsNotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newFakeLocker(), newFakeCache())

	_, err := svc.ListByUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrNotFound))
}
