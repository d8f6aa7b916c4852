package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PromotionPurchase is the write set of a paid promotion: the listing update,
// the profile debit and the ledger entry.
type PromotionPurchase struct {
	ListingID   uuid.UUID
	UserID      uuid.UUID
	Mode        PromotionMode
	StartAt     time.Time
	EndAt       time.Time
	ExpiresAt   time.Time
	BumpedAt    time.Time
	Cost        int
	PackageName string
	Metadata    datatypes.JSON
}

// PromotionReceipt reports what the write sequence committed.
// LogErr is set when the ledger entry could not be written; the purchase itself still stands.
type PromotionReceipt struct {
	RemainingCredits int
	TransactionID    uuid.UUID
	LogErr           error
}
