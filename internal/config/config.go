package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                    string
	Port                   string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	SupabaseURL            string // https://<project>.supabase.co, used for auth lookups and storage
	SupabaseServiceRoleKey string // service_role key; never sent to the client
	SupabaseAnonKey        string
	SupabaseJWTSecret      string // HS256 secret used to verify access tokens locally
	ScopedRLS              bool   // run caller-scoped reads under the "authenticated" role
	CORSAllowedSuffix      string // empty = any origin (edge function parity)
	HealthAdminKey         string
	AdminKeyHash           string // bcrypt hash of the x-admin-key header value
	PromotionSweepSchedule string
	IdentityCacheTTL       time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PROMOTION_SWEEP_SCHEDULE", "@every 5m")
	viper.SetDefault("IDENTITY_CACHE_TTL", "5m")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	cacheTTL := viper.GetDuration("IDENTITY_CACHE_TTL")
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Config{
		Env:                    env,
		Port:                   viper.GetString("PORT"),
		LogLevel:               viper.GetString("LOG_LEVEL"),
		DatabaseURL:            dbURL,
		RedisURL:               viper.GetString("REDIS_URL"),
		SupabaseURL:            strings.TrimRight(strings.TrimSpace(viper.GetString("SUPABASE_URL")), "/"),
		SupabaseServiceRoleKey: viper.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseAnonKey:        viper.GetString("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret:      viper.GetString("SUPABASE_JWT_SECRET"),
		ScopedRLS:              strings.EqualFold(viper.GetString("SCOPED_RLS"), "true"),
		CORSAllowedSuffix:      viper.GetString("CORS_ALLOWED_SUFFIX"),
		HealthAdminKey:         viper.GetString("HEALTH_ADMIN_KEY"),
		AdminKeyHash:           viper.GetString("ADMIN_KEY_HASH"),
		PromotionSweepSchedule: strings.TrimSpace(viper.GetString("PROMOTION_SWEEP_SCHEDULE")),
		IdentityCacheTTL:       cacheTTL,
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
