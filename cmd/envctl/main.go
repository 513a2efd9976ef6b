package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/seedgate/internal/config"
	"github.com/danmuck/seedgate/internal/envbuild"
	"github.com/danmuck/seedgate/internal/envinfo"
	"github.com/danmuck/seedgate/internal/observability"
	"github.com/rs/zerolog/log"
)

func main() {
	observability.InitLogger("envctl")

	configPath := flag.String("config", "", "path to envctl config.toml (optional)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: envctl [-config path] <environment path>")
		os.Exit(2)
	}

	cfg, err := config.LoadEnvConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load env config")
	}

	base, err := envinfo.Snapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read environment descriptor")
	}
	version := cfg.RuntimeVersion
	if version == "" {
		version = base.Version
	}

	builder := &envbuild.Builder{
		Base:            base,
		SeedCommand:     cfg.SeedCommand,
		CapabilityProbe: cfg.CapabilityProbe,
		RuntimeVersion:  version,
		Advisory:        config.AdvisoryParams(cfg.Advisory),
	}

	err = builder.Create(context.Background(), flag.Arg(0))
	var absent *envbuild.CapabilityAbsentError
	if errors.As(err, &absent) {
		fmt.Fprint(os.Stderr, absent.Advisory)
		os.Exit(absent.Code)
	}
	if err != nil {
		// Any other seeding failure surfaces unchanged.
		log.Fatal().Err(err).Msg("environment creation failed")
	}
	log.Info().Str("path", flag.Arg(0)).Msg("environment created")
}
