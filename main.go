package main

import (
	"os"

	"github.com/Speshl/gotfc/internal/app"
	"github.com/Speshl/gotfc/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.GetConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	app, err := app.NewApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed creating harness")
	}

	err = app.Start()
	if err != nil {
		log.Error().Err(err).Msg("harness shutdown with error")
		os.Exit(1)
	} else {
		log.Info().Msg("harness shutdown successfully")
	}
}
