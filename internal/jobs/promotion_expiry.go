package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const sweepTimeout = 2 * time.Minute

// PromotionSweeper resets promotions whose window has ended.
type PromotionSweeper interface {
	ClearExpiredPromotions(ctx context.Context, now time.Time) (int64, error)
}

// PromotionExpiryJob runs the sweeper on a cron schedule in UTC.
type PromotionExpiryJob struct {
	cron     *cron.Cron
	sweeper  PromotionSweeper
	schedule string
	now      func() time.Time
}

func NewPromotionExpiryJob(sweeper PromotionSweeper, schedule string) *PromotionExpiryJob {
	return &PromotionExpiryJob{
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper:  sweeper,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start registers the sweep and starts the scheduler. An empty schedule disables the job.
func (j *PromotionExpiryJob) Start() error {
	if j == nil || j.cron == nil || j.sweeper == nil || j.schedule == "" {
		return nil
	}
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return err
	}
	j.cron.Start()
	log.Info().Str("schedule", j.schedule).Msg("promotion expiry sweeper started")
	return nil
}

// RunOnce performs a single sweep.
func (j *PromotionExpiryJob) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.sweeper.ClearExpiredPromotions(ctx, j.now().UTC())
	if err != nil {
		log.Warn().Err(err).Msg("promotion expiry sweep failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("cleared", n).Msg("expired promotions cleared")
	}
	return n, nil
}

func (j *PromotionExpiryJob) Stop() {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(2 * time.Second):
	}
}
