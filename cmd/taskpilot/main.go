package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/taskpilot-dev/taskpilot/db"
	"github.com/taskpilot-dev/taskpilot/internal/auth"
	"github.com/taskpilot-dev/taskpilot/internal/chatbot"
	"github.com/taskpilot-dev/taskpilot/internal/config"
	"github.com/taskpilot-dev/taskpilot/internal/router"
	"github.com/taskpilot-dev/taskpilot/pkg/logger"
)

func main() {
	// A missing .env file is fine; required values are enforced by the
	// config loader.
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if err := auth.Init(cfg.JWTSecret); err != nil {
		log.Fatal().Err(err).Msg("failed to initialise auth")
	}

	if err := db.ConnectDatabase(cfg.Database.Adapter, cfg.Database.DSN); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	dispatcher := chatbot.NewDispatcher(db.DB, chatbot.NewHTTPCompleter(cfg.Completion), log)

	r := router.NewRouter(dispatcher)

	log.Info().Str("port", cfg.Port).Str("adapter", cfg.Database.Adapter).Msg("starting server")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
