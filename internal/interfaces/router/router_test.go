package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"incontridolci-backend/internal/application/identity"
	"incontridolci-backend/internal/config"
	"incontridolci-backend/internal/domain"
	"incontridolci-backend/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tokenProvider map[string]*identity.Caller

func (p tokenProvider) Resolve(_ context.Context, token string) (*identity.Caller, error) {
	if c, ok := p[token]; ok {
		return c, nil
	}
	return nil, identity.ErrUnauthorized
}

type appFixture struct {
	app     *fiber.App
	db      *gorm.DB
	userID  uuid.UUID
	listing domain.Listing
}

func setupApp(t *testing.T) *appFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Profile{ID: userID, Username: "owner", Credits: 40}).Error)
	expires := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	listing := domain.Listing{UserID: userID, Title: "Annuncio", City: "Napoli", ExpiresAt: &expires}
	require.NoError(t, db.Create(&listing).Error)

	now := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	app := NewApp(Deps{
		Config:   &config.Config{Env: "test"},
		DB:       db,
		Rdb:      rdb,
		Identity: tokenProvider{"owner-token": {UserID: userID, Role: identity.RoleAuthenticated}},
		Now:      func() time.Time { return now },
	})
	return &appFixture{app: app, db: db, userID: userID, listing: listing}
}

func (f *appFixture) promote(t *testing.T, token string, cost int) (int, map[string]interface{}) {
	body, _ := json.Marshal(map[string]interface{}{
		"listingId":             f.listing.ID.String(),
		"promotionType":         "night",
		"cost":                  cost,
		"durationHours":         24,
		"timezoneOffsetMinutes": 0,
	})
	req := httptest.NewRequest("POST", "/functions/v1/promote-listing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestPromoteListing_EndToEnd(t *testing.T) {
	f := setupApp(t)

	status, out := f.promote(t, "owner-token", 15)
	assert.Equal(t, 200, status)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Listing promoted successfully (Night promotion - 1 night)", out["message"])

	var p domain.Profile
	require.NoError(t, f.db.First(&p, "id = ?", f.userID).Error)
	assert.Equal(t, 25, p.Credits)

	// The promotion starts at 23:00, so it is not live yet at 22:00.
	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/listings/promoted", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestPromoteListing_RejectsUnknownToken(t *testing.T) {
	f := setupApp(t)

	status, out := f.promote(t, "stolen", 15)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Unauthorized", out["error"])

	status, _ = f.promote(t, "", 15)
	assert.Equal(t, 401, status)
}

func TestCreditsRoutesRequireCaller(t *testing.T) {
	f := setupApp(t)

	resp, err := f.app.Test(httptest.NewRequest("GET", "/api/v1/credits/balance", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/v1/credits/balance", nil)
	req.Header.Set("Authorization", "Bearer owner-token")
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAdminGrantDisabledWithoutHash(t *testing.T) {
	f := setupApp(t)
	req := httptest.NewRequest("POST", "/api/v1/admin/credits/grant", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("x-admin-key", "anything")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestMetricsExposesPromotionCounters(t *testing.T) {
	f := setupApp(t)
	status, _ := f.promote(t, "owner-token", 15)
	require.Equal(t, 200, status)

	resp, err := f.app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `incontridolci_promotions_purchased_total{mode="night"}`)
	assert.Contains(t, string(body), "incontridolci_credits_debited_total")
}

func TestPreflightAndHealth(t *testing.T) {
	f := setupApp(t)

	req := httptest.NewRequest("OPTIONS", "/functions/v1/promote-listing", nil)
	req.Header.Set("Origin", "https://incontridolci.it")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, err = f.app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestIdentityProviderSelection(t *testing.T) {
	_, ok := IdentityProvider(&config.Config{SupabaseJWTSecret: "s"}, nil).(*identity.JWTVerifier)
	assert.True(t, ok)

	assert.Nil(t, IdentityProvider(&config.Config{}, nil))

	_, ok = IdentityProvider(&config.Config{SupabaseURL: "https://p.supabase.co"}, nil).(*identity.SupabaseUserClient)
	assert.True(t, ok)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_, ok = IdentityProvider(&config.Config{SupabaseURL: "https://p.supabase.co"}, rdb).(*identity.CachedProvider)
	assert.True(t, ok)
}
