package router

import (
	"net/http"
	"time"

	creditsvc "incontridolci-backend/internal/application/credits"
	healthsvc "incontridolci-backend/internal/application/health"
	"incontridolci-backend/internal/application/identity"
	listsvc "incontridolci-backend/internal/application/listings"
	promosvc "incontridolci-backend/internal/application/promotions"
	uploadsvc "incontridolci-backend/internal/application/uploads"
	"incontridolci-backend/internal/config"
	"incontridolci-backend/internal/infrastructure/database"
	"incontridolci-backend/internal/infrastructure/store"
	credithandler "incontridolci-backend/internal/interfaces/handlers/credits"
	healthhandler "incontridolci-backend/internal/interfaces/handlers/health"
	listhandler "incontridolci-backend/internal/interfaces/handlers/listings"
	promohandler "incontridolci-backend/internal/interfaces/handlers/promotions"
	uploadhandler "incontridolci-backend/internal/interfaces/handlers/uploads"
	"incontridolci-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators NewApp wires into routes. DB, Rdb and Identity may be nil;
// routes that need a missing dependency are not mounted.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Rdb      *redis.Client
	Identity identity.Provider
	Now      func() time.Time
}

// CreateApp opens the database and Redis from cfg and builds the Fiber app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	rdb, err := database.OpenRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	app := NewApp(Deps{
		Config:   cfg,
		DB:       db,
		Rdb:      rdb,
		Identity: IdentityProvider(cfg, rdb),
	})
	return app, db, rdb, nil
}

// IdentityProvider verifies tokens locally when the JWT secret is known, otherwise asks
// Supabase Auth (with a Redis cache in front when available).
func IdentityProvider(cfg *config.Config, rdb *redis.Client) identity.Provider {
	if cfg.SupabaseJWTSecret != "" {
		return identity.NewJWTVerifier(cfg.SupabaseJWTSecret)
	}
	if cfg.SupabaseURL == "" {
		return nil
	}
	apiKey := cfg.SupabaseAnonKey
	if apiKey == "" {
		apiKey = cfg.SupabaseServiceRoleKey
	}
	var p identity.Provider = &identity.SupabaseUserClient{BaseURL: cfg.SupabaseURL, APIKey: apiKey}
	if rdb != nil {
		p = &identity.CachedProvider{Next: p, Rdb: rdb, TTL: cfg.IdentityCacheTTL}
	}
	return p
}

func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{AllowedSuffix: cfg.CORSAllowedSuffix}))
	app.Use(middleware.HealthMarker(d.Rdb))
	app.Use(middleware.Identify(d.Identity))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	hs := &healthsvc.Service{Rdb: d.Rdb, SupabaseURL: cfg.SupabaseURL, SupabaseKey: cfg.SupabaseAnonKey}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			hs.DB = sqlDB
		}
	}
	hh := &healthhandler.Handlers{Service: hs, Rdb: d.Rdb, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sc := &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, ServiceRoleKey: cfg.SupabaseServiceRoleKey}
	uph := &uploadhandler.Handlers{Service: &uploadsvc.Service{Client: sc, SupabaseURL: cfg.SupabaseURL, Now: d.Now}}
	upg := app.Group("/api/v1/uploads", middleware.RequireCaller())
	upg.Post("/listing-photo", uph.UploadListingPhoto)

	if d.DB == nil {
		return app
	}

	// Edge function
	ps := &promosvc.Service{
		Scoped:     &store.ScopedStores{DB: d.DB, EnforceRLS: cfg.ScopedRLS},
		Privileged: &store.PrivilegedStore{DB: d.DB},
		Now:        d.Now,
	}
	ph := &promohandler.Handlers{Service: ps}
	app.Post("/functions/v1/promote-listing", ph.PromoteListing)

	// Credits
	ch := &credithandler.Handlers{Service: &creditsvc.Service{DB: d.DB}}
	cg := app.Group("/api/v1/credits", middleware.RequireCaller())
	cg.Get("/balance", ch.GetBalance)
	cg.Get("/transactions", ch.GetTransactions)
	app.Post("/api/v1/admin/credits/grant", middleware.RequireAdminKey(cfg.AdminKeyHash), ch.Grant)

	// Listings
	lh := &listhandler.Handlers{Service: &listsvc.Service{DB: d.DB}, Now: d.Now}
	app.Get("/api/v1/listings/promoted", lh.GetPromoted)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
