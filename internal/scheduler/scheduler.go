// Package scheduler runs periodic housekeeping: expired sessions and
// stale signup codes are swept so the tables stay bounded.
package scheduler

import (
	"context"
	"time"

	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	"github.com/atomoco/atomo/internal/clock"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minSweepInterval = time.Minute

type Params struct {
	fx.In

	Sessions    authdomain.Repository
	SignupCodes signupdomain.Repository
	Clock       clock.Clock
	Log         *zap.Logger
}

type Scheduler struct {
	sessions    authdomain.Repository
	signupCodes signupdomain.Repository
	clock       clock.Clock
	log         *zap.Logger
	interval    time.Duration
}

func New(p Params, interval time.Duration) *Scheduler {
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	return &Scheduler{
		sessions:    p.Sessions,
		signupCodes: p.SignupCodes,
		clock:       p.Clock,
		log:         p.Log.Named("scheduler"),
		interval:    interval,
	}
}

// RunForever sweeps on the configured interval until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep deletes expired sessions and signup codes. Failures are logged
// and retried on the next tick; nothing here is urgent.
func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.clock.Now()

	if err := s.sessions.DeleteExpired(ctx, now); err != nil {
		s.log.Warn("session sweep failed", zap.Error(err))
	}
	if err := s.signupCodes.DeleteExpired(ctx, now); err != nil {
		s.log.Warn("signup code sweep failed", zap.Error(err))
	}
}
