package store

import (
	"context"
	"fmt"

	"incontridolci-backend/internal/domain"

	"gorm.io/gorm"
)

// PrivilegedStore writes with the service connection; row-level policies do not apply.
type PrivilegedStore struct {
	DB *gorm.DB
}

// ApplyPromotion updates the listing and debits the profile in one transaction.
// The debit only matches while credits >= cost, so concurrent purchases cannot overdraw.
// The ledger entry is written inside a savepoint: if it fails the purchase still commits
// and the failure is reported through PromotionReceipt.LogErr.
func (s *PrivilegedStore) ApplyPromotion(ctx context.Context, p domain.PromotionPurchase) (domain.PromotionReceipt, error) {
	var receipt domain.PromotionReceipt

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Listing{}).
			Where("id = ? AND user_id = ?", p.ListingID, p.UserID).
			Updates(map[string]interface{}{
				"is_premium":         true,
				"promotion_mode":     string(p.Mode),
				"promotion_start_at": p.StartAt,
				"promotion_end_at":   p.EndAt,
				"last_bumped_at":     p.BumpedAt,
				"expires_at":         p.ExpiresAt,
			})
		if res.Error != nil {
			return fmt.Errorf("update listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		res = tx.Model(&domain.Profile{}).
			Where("id = ? AND credits >= ?", p.UserID, p.Cost).
			UpdateColumn("credits", gorm.Expr("credits - ?", p.Cost))
		if res.Error != nil {
			return fmt.Errorf("debit credits: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientCredits
		}

		var profile domain.Profile
		if err := tx.Select("id", "credits").Where("id = ?", p.UserID).First(&profile).Error; err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		receipt.RemainingCredits = profile.Credits

		entry := domain.CreditTransaction{
			UserID:      p.UserID,
			Amount:      -p.Cost,
			Type:        domain.TransactionPremiumUpgrade,
			PackageName: p.PackageName,
			Metadata:    p.Metadata,
		}
		if err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&entry).Error
		}); err != nil {
			receipt.LogErr = fmt.Errorf("insert credit transaction: %w", err)
			return nil
		}
		receipt.TransactionID = entry.ID
		return nil
	})
	if err != nil {
		return domain.PromotionReceipt{}, err
	}
	return receipt, nil
}
