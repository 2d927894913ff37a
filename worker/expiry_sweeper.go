package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Expirer is the slice of the booking service the sweeper needs.
type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// ExpirySweeper periodically drives lapsed PENDING_PAYMENT bookings through
// the expire transition.
type ExpirySweeper struct {
	expirer  Expirer
	logger   zerolog.Logger
	interval time.Duration
}

func NewExpirySweeper(expirer Expirer, interval time.Duration, logger zerolog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		expirer:  expirer,
		logger:   logger.With().Str("component", "expiry_sweeper").Logger(),
		interval: interval,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("expiry sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("expiry sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			expired, err := s.expirer.ExpireDue(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if expired > 0 {
				s.logger.Info().Int("expired", expired).Msg("expiry sweep completed")
			}
		}
	}
}
