package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"incontridolci-backend/internal/domain"
	"incontridolci-backend/internal/metrics"

	"gorm.io/gorm"
)

const (
	DefaultPromotedLimit = 20
	MaxPromotedLimit     = 100
)

type Service struct {
	DB *gorm.DB
}

type PromotedFilter struct {
	City     string
	Category string
	Limit    int
}

// ActivePromoted returns listings whose promotion window covers now and that have not
// expired, most recently bumped first. Paused listings (no expiry) are excluded.
func (s *Service) ActivePromoted(ctx context.Context, now time.Time, f PromotedFilter) ([]domain.Listing, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPromotedLimit
	}
	if limit > MaxPromotedLimit {
		limit = MaxPromotedLimit
	}
	now = now.UTC()

	q := s.DB.WithContext(ctx).
		Where("promotion_mode IS NOT NULL").
		Where("promotion_start_at <= ? AND promotion_end_at > ?", now, now).
		Where("expires_at > ?", now)
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		q = q.Where("category = ?", category)
	}

	listings := []domain.Listing{}
	if err := q.Order("last_bumped_at DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("fetch promoted listings: %w", err)
	}
	return listings, nil
}

// ClearExpiredPromotions resets the promotion fields of listings whose window ended at or
// before now, so a set promotion mode always comes with a live window.
func (s *Service) ClearExpiredPromotions(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("promotion_end_at IS NOT NULL AND promotion_end_at <= ?", now.UTC()).
		Updates(map[string]interface{}{
			"is_premium":         false,
			"promotion_mode":     nil,
			"promotion_start_at": nil,
			"promotion_end_at":   nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("clear expired promotions: %w", res.Error)
	}
	metrics.ObservePromotionsCleared(res.RowsAffected)
	return res.RowsAffected, nil
}
