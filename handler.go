package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pbs/booking-service/cache"
	"github.com/pbs/booking-service/model"
	"github.com/pbs/booking-service/repository"
	"github.com/pbs/booking-service/service"
)

type BookingHandler struct {
	bookings *service.BookingService
	store    repository.Store
	cache    cache.BookingCache
}

func NewBookingHandler(bookings *service.BookingService, store repository.Store, bookingCache cache.BookingCache) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		store:    store,
		cache:    bookingCache,
	}
}

// InitiateBooking reserves the requested seats for the authenticated user.
func (h *BookingHandler) InitiateBooking(c *gin.Context) {
	var req model.InitiateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	req.UserID = userID

	resp, err := h.bookings.Initiate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ConfirmBooking settles a pending booking after payment succeeded.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "booking id is required",
		})
		return
	}

	if err := h.bookings.Confirm(c.Request.Context(), bookingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// GetBooking returns one booking owned by the authenticated user.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.bookings.GetByID(c.Request.Context(), c.Param("bookingId"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListUserBookings returns every booking of the authenticated user.
func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.bookings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck verifies database and cache connectivity.
func (h *BookingHandler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
			Status:    "unhealthy",
			Service:   "booking-service",
			Timestamp: time.Now().UTC(),
		})
		return
	}
	if err := h.cache.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
			Status:    "unhealthy",
			Service:   "booking-service",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Service:   "booking-service",
		Timestamp: time.Now().UTC(),
	})
}

func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Error:   "unauthorized",
			Message: "User ID not found in token",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: "Invalid user ID format",
		})
		return "", false
	}
	return id, true
}

// respondError maps the typed error taxonomy onto HTTP statuses.
// Infrastructure failures answer with a generic message so internals never
// leak to clients.
func respondError(c *gin.Context, err error) {
	kind := model.KindOf(err)

	status := http.StatusInternalServerError
	message := "An internal error occurred"

	switch kind {
	case model.ErrValidation:
		status = http.StatusBadRequest
		message = model.MessageOf(err)
	case model.ErrSeatUnavailable:
		status = http.StatusConflict
		message = model.MessageOf(err)
	case model.ErrInvalidState:
		status = http.StatusConflict
		message = model.MessageOf(err)
	case model.ErrNotFound:
		status = http.StatusNotFound
		message = model.MessageOf(err)
	case model.ErrLock:
		status = http.StatusServiceUnavailable
		message = "Seat locking is temporarily unavailable, please retry"
	}

	c.JSON(status, model.ErrorResponse{
		Error:   string(kind),
		Message: message,
	})
}
