package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"airdrop-service/internal/usecase"
)

// Reconciler periodically finalizes records whose token transfer confirmed
// after the claim call that initiated it went away.
type Reconciler struct {
	claim     *usecase.ClaimUsecase
	interval  time.Duration
	batchSize int
	scheduler gocron.Scheduler
}

func NewReconciler(claim *usecase.ClaimUsecase, interval time.Duration, batchSize int) *Reconciler {
	return &Reconciler{
		claim:     claim,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (r *Reconciler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			finalized, err := r.claim.ReconcilePending(ctx, r.batchSize)
			if err != nil {
				slog.ErrorContext(ctx, "pending transfer sweep failed",
					slog.String("error", err.Error()),
					slog.String("module", "reconciler"),
				)
				return
			}
			if finalized > 0 {
				slog.InfoContext(ctx, "finalized pending transfers",
					slog.Int("count", finalized),
					slog.String("module", "reconciler"),
				)
			}
		}),
	)
	if err != nil {
		return err
	}

	sched.Start()
	r.scheduler = sched
	return nil
}

func (r *Reconciler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}
