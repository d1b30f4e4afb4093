package main

import (
	"context"
	"flag"
	"mancala/config"
	"mancala/experiments"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "Path to a config file (yaml, json or toml)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	log.Debug().Msgf("loaded config %+v", *cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := experiments.SelfPlay(cfg.Games, cfg.ThinkTime, cfg.Temperature, cfg.Seed)
	e.OutputDir = cfg.OutputDir
	e.Options = cfg.ControllerOptions()

	dir, err := experiments.Run(ctx, e)
	if err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("experiment failed")
		stop()
		os.Exit(1)
	}
	log.Info().Str("dir", dir).Msg("experiment records stored")
}
