package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/arafateouronile-glitch/immokey/internal/clock"
	"github.com/arafateouronile-glitch/immokey/internal/config"
	"github.com/arafateouronile-glitch/immokey/internal/ratelimit"
	rentbillingdomain "github.com/arafateouronile-glitch/immokey/internal/rentbilling/domain"
)

const sweepLockKey = "immokey:scheduler:overdue_sweep"

// Scheduler runs the periodic pending->overdue sweep when SWEEP_ENABLED is
// set. Due-date statuses are otherwise recomputed lazily on payment events,
// so the sweep is strictly an acceleration, never a correctness requirement.
type Scheduler struct {
	log      *zap.Logger
	clock    clock.Clock
	billing  rentbillingdomain.Service
	locker   *ratelimit.Locker
	interval time.Duration
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Billing rentbillingdomain.Service
	Locker  *ratelimit.Locker `optional:"true"`
}

func New(p Params) *Scheduler {
	interval := time.Duration(p.Config.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:    p.Clock,
		billing:  p.Billing,
		locker:   p.Locker,
		interval: interval,
	}
}

// RunOnce executes a single sweep pass. When a redis locker is configured,
// only the replica that wins the lock runs the pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.interval)
		if err != nil {
			s.log.Warn("sweep lock unavailable", zap.Error(err))
			return err
		}
		if !ok {
			s.log.Debug("sweep held by another replica")
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, sweepLockKey, token); err != nil {
				s.log.Warn("sweep lock release failed", zap.Error(err))
			}
		}()
	}

	flipped, err := s.billing.MarkOverdue(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if flipped > 0 {
		s.log.Info("overdue sweep completed", zap.Int64("flipped", flipped))
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("sweep run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
