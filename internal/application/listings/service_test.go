package listings

import (
	"context"
	"testing"
	"time"

	"incontridolci-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

func setupListingsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Listing{}))
	return &Service{DB: db}, db
}

func ptr[T any](v T) *T { return &v }

func promoted(title, city string, start, end, bumped time.Time, expires *time.Time) domain.Listing {
	mode := domain.PromotionDay
	return domain.Listing{
		UserID:           uuid.New(),
		Title:            title,
		City:             city,
		IsPremium:        true,
		PromotionMode:    &mode,
		PromotionStartAt: &start,
		PromotionEndAt:   &end,
		LastBumpedAt:     &bumped,
		ExpiresAt:        expires,
	}
}

func TestActivePromoted(t *testing.T) {
	svc, db := setupListingsTest(t)
	future := ptr(now.AddDate(0, 1, 0))
	rows := []domain.Listing{
		promoted("older", "Milano", now.Add(-2*time.Hour), now.Add(time.Hour), now.Add(-3*time.Hour), future),
		promoted("newer", "Roma", now.Add(-time.Hour), now.Add(time.Hour), now.Add(-time.Hour), future),
		promoted("scheduled", "Roma", now.Add(time.Hour), now.Add(2*time.Hour), now, future),
		promoted("ended", "Roma", now.Add(-2*time.Hour), now, now, future),
		promoted("paused", "Roma", now.Add(-time.Hour), now.Add(time.Hour), now, nil),
		promoted("expired", "Roma", now.Add(-time.Hour), now.Add(time.Hour), now, ptr(now.Add(-time.Minute))),
		{UserID: uuid.New(), Title: "plain", ExpiresAt: future},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	got, err := svc.ActivePromoted(context.Background(), now, PromotedFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Title)
	assert.Equal(t, "older", got[1].Title)

	got, err = svc.ActivePromoted(context.Background(), now, PromotedFilter{City: "milano"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "older", got[0].Title)

	got, err = svc.ActivePromoted(context.Background(), now, PromotedFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestClearExpiredPromotions(t *testing.T) {
	svc, db := setupListingsTest(t)
	future := ptr(now.AddDate(0, 1, 0))
	ended := promoted("ended", "Roma", now.Add(-2*time.Hour), now, now, future)
	live := promoted("live", "Roma", now.Add(-time.Hour), now.Add(time.Hour), now, future)
	require.NoError(t, db.Create(&ended).Error)
	require.NoError(t, db.Create(&live).Error)

	n, err := svc.ClearExpiredPromotions(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var got domain.Listing
	require.NoError(t, db.First(&got, "id = ?", ended.ID).Error)
	assert.False(t, got.IsPremium)
	assert.Nil(t, got.PromotionMode)
	assert.Nil(t, got.PromotionStartAt)
	assert.Nil(t, got.PromotionEndAt)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(*future))

	require.NoError(t, db.First(&got, "id = ?", live.ID).Error)
	assert.True(t, got.IsPremium)
	assert.NotNil(t, got.PromotionMode)

	n, err = svc.ClearExpiredPromotions(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
