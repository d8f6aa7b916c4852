package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromotionMode is the paid visibility product bought for a listing.
type PromotionMode string

const (
	PromotionDay   PromotionMode = "day"
	PromotionNight PromotionMode = "night"
)

// Valid reports whether m is one of the known promotion products.
func (m PromotionMode) Valid() bool {
	return m == PromotionDay || m == PromotionNight
}

// Listing matches the Supabase "listings" table. A nil ExpiresAt means the listing is paused.
// When PromotionMode is set, PromotionStartAt and PromotionEndAt are set and start < end.
type Listing struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Title            string         `gorm:"column:title;not null;default:''" json:"title"`
	City             string         `gorm:"column:city;not null;default:''" json:"city"`
	Category         string         `gorm:"column:category;not null;default:''" json:"category"`
	ExpiresAt        *time.Time     `gorm:"column:expires_at" json:"expires_at"`
	IsPremium        bool           `gorm:"column:is_premium;not null;default:false" json:"is_premium"`
	PromotionMode    *PromotionMode `gorm:"column:promotion_mode;type:varchar(10)" json:"promotion_mode"`
	PromotionStartAt *time.Time     `gorm:"column:promotion_start_at" json:"promotion_start_at"`
	PromotionEndAt   *time.Time     `gorm:"column:promotion_end_at;index" json:"promotion_end_at"`
	LastBumpedAt     *time.Time     `gorm:"column:last_bumped_at" json:"last_bumped_at"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PromotedAt reports whether the listing's promotion window covers t.
func (l *Listing) PromotedAt(t time.Time) bool {
	if l.PromotionMode == nil || l.PromotionStartAt == nil || l.PromotionEndAt == nil {
		return false
	}
	return !t.Before(*l.PromotionStartAt) && t.Before(*l.PromotionEndAt)
}
