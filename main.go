package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/riddles/apps/go-server/internal/app"
	"github.com/robalobadob/riddles/apps/go-server/internal/config"
	"github.com/robalobadob/riddles/apps/go-server/internal/logging"
	"github.com/robalobadob/riddles/apps/go-server/internal/riddles"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.SetLevel(cfg.LogLevel)
	logger := logging.New(cfg.Name, cfg.Env)
	ctx = logging.IntoContext(ctx, logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		var cfgErr *riddles.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Fatal().Err(err).Str("source", cfgErr.Source).Msg("riddle catalog is unusable")
		}
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}

	if cfg.Mode == "console" {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := a.RunConsole(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("console exited")
		}
		return
	}

	if err := a.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
