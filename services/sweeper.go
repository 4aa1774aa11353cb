package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically asks the EntitlementService to expire stale gift
// timers. It is the only revoke-retry mechanism in the system: a revoke
// that fails on one tick is retried when its timer, still present or
// re-touched, expires on a later one.
type Sweeper struct {
	service  *EntitlementService
	interval time.Duration
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(service *EntitlementService, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// Each pass is independent; a failed pass is logged and the next tick
// tries again.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Expiry sweeper started")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.service.SweepExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Expiry sweep failed")
		return
	}
	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Expiry sweep completed")
	}
}
