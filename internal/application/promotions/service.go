package promotions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"incontridolci-backend/internal/application/identity"
	"incontridolci-backend/internal/domain"
	"incontridolci-backend/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Browser offsets range from UTC-12 to UTC+14.
const (
	minTimezoneOffset = -14 * 60
	maxTimezoneOffset = 12 * 60
)

// ScopedStore reads rows on behalf of the caller, subject to row-level policies.
type ScopedStore interface {
	FindListing(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error)
	FindProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// ScopedStores hands out a ScopedStore bound to one caller.
type ScopedStores interface {
	ForCaller(caller *identity.Caller) ScopedStore
}

// PrivilegedStore applies the purchase write set with service privileges.
// It returns domain.ErrNotFound when the listing vanished and
// domain.ErrInsufficientCredits when the guarded debit matched no row.
type PrivilegedStore interface {
	ApplyPromotion(ctx context.Context, p domain.PromotionPurchase) (domain.PromotionReceipt, error)
}

type Service struct {
	Scoped     ScopedStores
	Privileged PrivilegedStore
	Now        func() time.Time
}

// PromoteInput is the promote-listing request. Nil fields were absent from the request.
type PromoteInput struct {
	ListingID             *string
	PromotionType         *string
	Cost                  *int
	DurationHours         *int
	TimeSlot              *string
	TimezoneOffsetMinutes *int
}

type PromoteResult struct {
	Message          string    `json:"message"`
	PromotionStartAt time.Time `json:"promotion_start_at"`
	PromotionEndAt   time.Time `json:"promotion_end_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingCredits int       `json:"remaining_credits"`
}

type validatedInput struct {
	listingID uuid.UUID
	cost      int
	window    WindowRequest
}

// Promote buys a promotion for one of the caller's listings. Every returned error is an *Error.
func (s *Service) Promote(ctx context.Context, caller *identity.Caller, in PromoteInput) (result *PromoteResult, err error) {
	defer func() {
		if err != nil {
			metrics.ObservePromotionFailure(KindOf(err).String())
		}
	}()

	req, verr := validate(in)
	if verr != nil {
		return nil, verr
	}
	if caller == nil || caller.UserID == uuid.Nil {
		return nil, unauthorizedError(nil)
	}

	scoped := s.Scoped.ForCaller(caller)
	listing, err := scoped.FindListing(ctx, req.listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFoundError("Listing", err)
		}
		return nil, persistenceError("Failed to load listing", err)
	}
	if listing.UserID != caller.UserID {
		return nil, forbiddenError()
	}

	profile, err := scoped.FindProfile(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFoundError("Profile", err)
		}
		return nil, persistenceError("Failed to load profile", err)
	}
	if profile.Credits < req.cost {
		return nil, insufficientCreditsError(req.cost, profile.Credits)
	}

	now := s.now()
	window, err := CalculateWindow(req.window, now)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	expiresAt := MergeExpiry(listing.ExpiresAt, window.End)
	packageName := PackageName(req.window)

	receipt, err := s.Privileged.ApplyPromotion(ctx, domain.PromotionPurchase{
		ListingID:   listing.ID,
		UserID:      caller.UserID,
		Mode:        req.window.Type,
		StartAt:     window.Start,
		EndAt:       window.End,
		ExpiresAt:   expiresAt,
		BumpedAt:    now,
		Cost:        req.cost,
		PackageName: packageName,
		Metadata:    purchaseMetadata(listing.ID, req.window, window),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, notFoundError("Listing", err)
		case errors.Is(err, domain.ErrInsufficientCredits):
			return nil, insufficientCreditsError(req.cost, profile.Credits)
		}
		log.Ctx(ctx).Error().Err(err).Str("listing_id", listing.ID.String()).Str("user_id", caller.UserID.String()).Msg("promote listing: write failed")
		return nil, persistenceError("Failed to promote listing", err)
	}
	if receipt.LogErr != nil {
		metrics.TransactionLogFailures.Inc()
		log.Ctx(ctx).Warn().Err(receipt.LogErr).
			Str("listing_id", listing.ID.String()).
			Str("user_id", caller.UserID.String()).
			Int("amount", -req.cost).
			Msg("promote listing: credit transaction not recorded")
	}
	metrics.ObservePromotionPurchased(string(req.window.Type), req.cost)

	return &PromoteResult{
		Message:          fmt.Sprintf("Listing promoted successfully (%s)", packageName),
		PromotionStartAt: window.Start,
		PromotionEndAt:   window.End,
		ExpiresAt:        expiresAt,
		RemainingCredits: receipt.RemainingCredits,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validate(in PromoteInput) (*validatedInput, *Error) {
	if in.ListingID == nil || strings.TrimSpace(*in.ListingID) == "" ||
		in.PromotionType == nil || in.Cost == nil || in.DurationHours == nil || in.TimezoneOffsetMinutes == nil {
		return nil, validationError("Missing required fields")
	}
	listingID, err := uuid.Parse(strings.TrimSpace(*in.ListingID))
	if err != nil {
		return nil, validationError("Invalid listingId")
	}
	mode := domain.PromotionMode(strings.TrimSpace(*in.PromotionType))
	if !mode.Valid() {
		return nil, validationError("promotionType must be 'day' or 'night'")
	}
	if *in.Cost <= 0 {
		return nil, validationError("cost must be a positive integer")
	}
	if *in.DurationHours <= 0 {
		return nil, validationError("durationHours must be a positive integer")
	}
	if *in.DurationHours > MaxDurationHours {
		return nil, validationError(fmt.Sprintf("durationHours must not exceed %d", MaxDurationHours))
	}
	offset := *in.TimezoneOffsetMinutes
	if offset < minTimezoneOffset || offset > maxTimezoneOffset {
		return nil, validationError("timezoneOffsetMinutes is out of range")
	}

	slot := ""
	if in.TimeSlot != nil {
		slot = strings.TrimSpace(*in.TimeSlot)
	}
	if mode == domain.PromotionDay {
		if slot == "" {
			return nil, validationError("timeSlot is required for day promotions")
		}
		if _, _, err := ParseTimeSlot(slot); err != nil {
			return nil, validationError("Invalid timeSlot, expected HH:MM-HH:MM")
		}
	} else {
		slot = ""
	}

	return &validatedInput{
		listingID: listingID,
		cost:      *in.Cost,
		window: WindowRequest{
			Type:                  mode,
			DurationHours:         *in.DurationHours,
			TimeSlot:              slot,
			TimezoneOffsetMinutes: offset,
		},
	}, nil
}

// PackageName is the ledger description of a promotion purchase.
func PackageName(req WindowRequest) string {
	if req.Type == domain.PromotionNight {
		return "Night promotion - " + durationLabel(req.DurationHours, "night")
	}
	return fmt.Sprintf("Day promotion - %s - slot %s", durationLabel(req.DurationHours, "day"), req.TimeSlot)
}

func durationLabel(hours int, unit string) string {
	if hours%24 != 0 {
		return fmt.Sprintf("%dh", hours)
	}
	n := hours / 24
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func purchaseMetadata(listingID uuid.UUID, req WindowRequest, w Window) datatypes.JSON {
	m := map[string]interface{}{
		"listing_id":         listingID.String(),
		"promotion_mode":     string(req.Type),
		"duration_hours":     req.DurationHours,
		"promotion_start_at": w.Start.Format(time.RFC3339),
		"promotion_end_at":   w.End.Format(time.RFC3339),
	}
	if req.TimeSlot != "" {
		m["time_slot"] = req.TimeSlot
		m["timezone_offset_minutes"] = req.TimezoneOffsetMinutes
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}
