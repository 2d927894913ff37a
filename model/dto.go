package model

import "time"

// ============================================================================
// API DATA TRANSFER OBJECTS (External - JSON tags for HTTP)
// ============================================================================

// InitiateBookingRequest is the API request to reserve seats. UserID is not
// bound from the body - the handler fills it from the authenticated
// principal.
type InitiateBookingRequest struct {
	ShowID      string   `json:"show_id" binding:"required"`
	SeatNumbers []string `json:"seat_numbers" binding:"required,min=1,max=10"`
	OfferCode   string   `json:"offer_code"`

	UserID string `json:"-"`
}

// BookingResponse is the API response for a single booking: the booking
// record, the resolved seat inventory rows and the per-seat booking rows.
type BookingResponse struct {
	Booking       *Booking        `json:"booking"`
	SeatInventory []SeatInventory `json:"seat_inventory"`
	BookingSeats  []BookingSeat   `json:"booking_seats"`
}

// NewBookingResponse builds a response from a booking and its resolved
// seats. The booking seat list always comes from the booking itself.
func NewBookingResponse(booking *Booking, seats []SeatInventory) *BookingResponse {
	return &BookingResponse{
		Booking:       booking,
		SeatInventory: seats,
		BookingSeats:  booking.BookingSeats,
	}
}

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ============================================================================
// BUS MESSAGE STRUCTURES
// ============================================================================

// BookingEvent is the envelope published to the bus for every lifecycle
// transition. The full booking (seats included) is embedded; consumers must
// tolerate additive fields.
type BookingEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	EventTime time.Time `json:"event_time"`
	Booking   *Booking  `json:"booking"`
}
