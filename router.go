package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func SetupRouter(handler *BookingHandler, jwtService *JWTService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())
	r.Use(LoggingMiddleware(logger))

	// Health check endpoint (no auth required)
	r.GET("/health", handler.HealthCheck)

	// API routes
	api := r.Group("/api/v1")

	// Protected endpoints (require authentication)
	protected := api.Group("")
	protected.Use(AuthMiddleware(jwtService))

	// Booking endpoints
	protected.POST("/booking", handler.InitiateBooking)
	protected.POST("/booking/:bookingId/confirm", handler.ConfirmBooking)
	protected.GET("/booking/:bookingId", handler.GetBooking)
	protected.GET("/bookings", handler.ListUserBookings)

	return r
}
