package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	listsvc "incontridolci-backend/internal/application/listings"
	"incontridolci-backend/internal/config"
	"incontridolci-backend/internal/infrastructure/database"
	"incontridolci-backend/internal/interfaces/router"
	"incontridolci-backend/internal/jobs"
	"incontridolci-backend/internal/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logger.Setup(cfg.Env, cfg.LogLevel)

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Ping(pingCtx, db, rdb); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("dependency check failed")
	}
	cancel()
	if db != nil {
		log.Info().Msg("Supabase (Postgres) connected")
	} else {
		log.Warn().Msg("DATABASE_URL not set: promote-listing, credits and listings routes are disabled")
	}
	if rdb != nil {
		log.Info().Msg("Redis connected")
	}

	var sweeper *jobs.PromotionExpiryJob
	if db != nil {
		sweeper = jobs.NewPromotionExpiryJob(&listsvc.Service{DB: db}, cfg.PromotionSweepSchedule)
		if err := sweeper.Start(); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.PromotionSweepSchedule).Msg("promotion sweeper")
		}
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msgf("Server running at http://localhost:%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	sweeper.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
