package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/seedgate/internal/config"
	"github.com/danmuck/seedgate/internal/envinfo"
	"github.com/danmuck/seedgate/internal/gate"
	"github.com/danmuck/seedgate/internal/observability"
	"github.com/danmuck/seedgate/internal/seeding"
	"github.com/rs/zerolog/log"
)

func main() {
	observability.InitLogger("seedctl")

	configPath := flag.String("config", "", "path to seedctl config.toml (optional)")
	prefix := flag.String("prefix", "", "target environment prefix (defaults to the ambient environment)")
	flag.Parse()

	cfg, err := config.LoadSeedConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load seed config")
	}
	if *prefix != "" {
		os.Setenv(envinfo.EnvPrefix, *prefix)
	}

	// The descriptor is read fresh here, once, before any side effect.
	desc, err := envinfo.Snapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read environment descriptor")
	}
	if cfg.RuntimeVersion != "" {
		desc.Version = cfg.RuntimeVersion
	}

	seeder := &seeding.Seeder{
		Gate:     gate.New(),
		Advisory: config.AdvisoryParams(cfg.Advisory),
		Bundle:   cfg.Bundle,
		LibRoot:  cfg.LibRoot,
	}

	err = seeder.Seed(context.Background(), desc)
	var halt *gate.Halt
	if errors.As(err, &halt) {
		// Deliberate hard stop: advisory, then the distinguished status.
		fmt.Fprint(os.Stderr, halt.Advisory)
		os.Exit(halt.Code)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Str("prefix", desc.ActivePrefix).Msg("seeding complete")
}
