package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"incontridolci-backend/internal/application/identity"
	"incontridolci-backend/internal/application/promotions"
	"incontridolci-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScopedStores builds caller-bound read stores. With EnforceRLS each read runs in a
// transaction under the "authenticated" role with the caller's JWT claims, so Supabase
// row-level security policies decide what is visible.
type ScopedStores struct {
	DB         *gorm.DB
	EnforceRLS bool
}

func (s *ScopedStores) ForCaller(caller *identity.Caller) promotions.ScopedStore {
	return &ScopedStore{db: s.DB, caller: caller, rls: s.EnforceRLS}
}

type ScopedStore struct {
	db     *gorm.DB
	caller *identity.Caller
	rls    bool
}

func (s *ScopedStore) FindListing(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	err := s.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", listingID).First(&listing).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return &listing, nil
}

func (s *ScopedStore) FindProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := s.run(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", userID).First(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

func (s *ScopedStore) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	if !s.rls {
		return fn(db)
	}
	if s.caller == nil {
		return errors.New("scoped read without caller")
	}
	claims, err := json.Marshal(s.caller.Claims())
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT set_config('request.jwt.claims', ?, true)", string(claims)).Error; err != nil {
			return fmt.Errorf("set jwt claims: %w", err)
		}
		if err := tx.Exec("SET LOCAL ROLE " + identity.RoleAuthenticated).Error; err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		return fn(tx)
	})
}
