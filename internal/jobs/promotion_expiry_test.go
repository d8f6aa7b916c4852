package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls  atomic.Int32
	lastAt atomic.Value
	err    error
}

func (s *countingSweeper) ClearExpiredPromotions(_ context.Context, now time.Time) (int64, error) {
	s.calls.Add(1)
	s.lastAt.Store(now)
	if s.err != nil {
		return 0, s.err
	}
	return 3, nil
}

func TestRunOnce_UsesUTCNow(t *testing.T) {
	sweeper := &countingSweeper{}
	job := NewPromotionExpiryJob(sweeper, "@every 1h")
	rome := time.FixedZone("CEST", 2*60*60)
	job.now = func() time.Time { return time.Date(2024, 6, 1, 1, 0, 0, 0, rome) }

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	at := sweeper.lastAt.Load().(time.Time)
	assert.Equal(t, time.UTC, at.Location())
	assert.Equal(t, 23, at.Hour())
}

func TestRunOnce_PropagatesError(t *testing.T) {
	job := NewPromotionExpiryJob(&countingSweeper{err: errors.New("db down")}, "@every 1h")
	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStart_RunsOnSchedule(t *testing.T) {
	sweeper := &countingSweeper{}
	job := NewPromotionExpiryJob(sweeper, "@every 1s")
	require.NoError(t, job.Start())
	defer job.Stop()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestStart_DisabledOrInvalid(t *testing.T) {
	assert.NoError(t, NewPromotionExpiryJob(&countingSweeper{}, "").Start())
	assert.Error(t, NewPromotionExpiryJob(&countingSweeper{}, "not a schedule").Start())

	var nilJob *PromotionExpiryJob
	assert.NoError(t, nilJob.Start())
	nilJob.Stop()
}
