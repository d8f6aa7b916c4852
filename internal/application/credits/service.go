package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"incontridolci-backend/internal/domain"
	"incontridolci-backend/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidAmount = errors.New("amount must be a positive integer")

type Service struct {
	DB *gorm.DB
}

type Balance struct {
	UserID  uuid.UUID `json:"user_id"`
	Credits int       `json:"credits"`
}

type TransactionPage struct {
	Items  []domain.CreditTransaction `json:"items"`
	Total  int64                      `json:"total"`
	Limit  int                        `json:"limit"`
	Offset int                        `json:"offset"`
}

func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	var p domain.Profile
	err := s.DB.WithContext(ctx).Select("id", "credits").Where("id = ?", userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load balance: %w", err)
	}
	return &Balance{UserID: p.ID, Credits: p.Credits}, nil
}

// ListTransactions returns the caller's ledger, newest first. limit is clamped to [1, MaxPageSize].
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) (*TransactionPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	byUser := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&domain.CreditTransaction{}).Where("user_id = ?", userID)
	}
	var total int64
	if err := byUser().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	items := []domain.CreditTransaction{}
	if err := byUser().Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &TransactionPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Grant credits a profile and records an admin_grant ledger entry in the same transaction.
func (s *Service) Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (*Balance, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var balance Balance
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Profile{}).Where("id = ?", userID).
			UpdateColumn("credits", gorm.Expr("credits + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("credit profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		meta, _ := json.Marshal(map[string]interface{}{"reason": reason})
		entry := domain.CreditTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        domain.TransactionAdminGrant,
			PackageName: "Admin grant",
			Metadata:    datatypes.JSON(meta),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("insert credit transaction: %w", err)
		}

		var p domain.Profile
		if err := tx.Select("id", "credits").Where("id = ?", userID).First(&p).Error; err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		balance = Balance{UserID: p.ID, Credits: p.Credits}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveCreditsGranted(amount)
	return &balance, nil
}
