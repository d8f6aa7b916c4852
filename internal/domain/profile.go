package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile matches the Supabase "profiles" table; ID is the auth user id.
type Profile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"column:username;not null;default:''" json:"username"`
	Credits   int       `gorm:"column:credits;not null;default:0" json:"credits"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
