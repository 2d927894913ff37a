package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pbs/booking-service/bus"
	buskafka "github.com/pbs/booking-service/bus/kafka"
	cacheredis "github.com/pbs/booking-service/cache/redis"
	"github.com/pbs/booking-service/config"
	lockredis "github.com/pbs/booking-service/lock/redis"
	"github.com/pbs/booking-service/pricing"
	"github.com/pbs/booking-service/repository/postgres"
	"github.com/pbs/booking-service/service"
	"github.com/pbs/booking-service/worker"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "booking-service").Logger()

	// Initialize configuration
	// Try to load from config.yaml first, fallback to environment variables
	cfg, err := config.Initialise("config.yaml", false)
	if err != nil {
		logger.Warn().Err(err).Msg("config file not found or invalid, using environment variables")
		cfg, err = config.Initialise("", true)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load configuration")
		}
	}

	// Initialize persistence
	store, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}

	// One Redis client backs both the seat locks and the reference cache
	redisClient, err := cacheredis.NewClient(cfg.Redis.GetRedisURL(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	seatLocker := lockredis.NewSeatLockManager(redisClient, cfg.Booking.ReservationWindow())
	bookingCache := cacheredis.NewBookingCache(redisClient)

	// Initialize Kafka publisher
	publisher := buskafka.NewPublisher(cfg.Kafka.Brokers)
	defer publisher.Close()

	topics := bus.TopicMap{
		BookingInitiated: cfg.Kafka.BookingInitiatedTopic,
		BookingConfirmed: cfg.Kafka.BookingConfirmedTopic,
		BookingExpired:   cfg.Kafka.BookingExpiredTopic,
	}

	// Core services
	bookings := service.NewBookingService(store, seatLocker, bookingCache, pricing.NewEngine(), cfg.Booking, logger)
	outboxPublisher := worker.NewOutboxPublisher(store.Reads().Outbox(), publisher, topics, cfg.Outbox.Interval(), cfg.Outbox.BatchSize, logger)
	sweeper := worker.NewExpirySweeper(bookings, cfg.Sweeper.Interval(), logger)

	// HTTP delivery
	handler := NewBookingHandler(bookings, store, bookingCache)
	jwtService := NewJWTService(cfg.JWTSecret)
	router := SetupRouter(handler, jwtService, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Run the API and both background loops under one lifecycle; SIGINT or
	// SIGTERM stops all of them, letting in-flight batches finish.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Msg("starting booking service API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return outboxPublisher.Start(ctx)
	})
	g.Go(func() error {
		return sweeper.Start(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("service exited with error")
	}
	logger.Info().Msg("booking service stopped")
}
