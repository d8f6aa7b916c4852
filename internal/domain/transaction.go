package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TransactionPremiumUpgrade = "premium_upgrade"
	TransactionAdminGrant     = "admin_grant"
)

// CreditTransaction is an append-only credit ledger entry ("credit_transactions").
// Amount is signed: debits are negative.
type CreditTransaction struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Amount      int            `gorm:"column:amount;not null" json:"amount"`
	Type        string         `gorm:"column:type;type:varchar(40);not null" json:"type"`
	PackageName string         `gorm:"column:package_name;not null;default:''" json:"package_name"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

func (t *CreditTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
