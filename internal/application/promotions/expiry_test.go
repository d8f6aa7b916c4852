package promotions_test

import (
	"testing"
	"time"

	"incontridolci-backend/internal/application/promotions"

	"github.com/stretchr/testify/assert"
)

func TestMergeExpiry_KeepsLaterCurrentExpiry(t *testing.T) {
	current := utc("2024-06-10T00:00:00Z")
	got := promotions.MergeExpiry(&current, utc("2024-06-04T23:00:00Z"))
	assert.Equal(t, utc("2024-07-10T00:00:00Z"), got)
}

func TestMergeExpiry_ExtendsFromPromotionEnd(t *testing.T) {
	current := utc("2024-06-02T00:00:00Z")
	got := promotions.MergeExpiry(&current, utc("2024-06-04T23:00:00Z"))
	assert.Equal(t, utc("2024-07-04T23:00:00Z"), got)
}

func TestMergeExpiry_PausedListing(t *testing.T) {
	got := promotions.MergeExpiry(nil, utc("2024-06-04T23:00:00Z"))
	assert.Equal(t, utc("2024-07-04T23:00:00Z"), got)
}

func TestMergeExpiry_NeverShortens(t *testing.T) {
	end := utc("2024-02-20T12:00:00Z")
	for d := -60; d <= 60; d += 3 {
		current := end.AddDate(0, 0, d)
		got := promotions.MergeExpiry(&current, end)
		assert.False(t, got.Before(current))
		assert.False(t, got.Before(end))
		assert.Equal(t, time.UTC, got.Location())
	}
}
