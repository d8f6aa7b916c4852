package bootstrap

import (
	"incontridolci-backend/internal/config"
	"incontridolci-backend/internal/interfaces/router"
	"incontridolci-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless deployments (api handler imports this package, not internal).
// The expiry sweeper is not started here; schedule ClearExpiredPromotions externally instead.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Env, cfg.LogLevel)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
