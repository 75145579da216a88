package main

import (
	"context"
	"flag"
	"log"

	"MonteSim/internal/di"
	"MonteSim/pkg/config"

	"github.com/google/subcommands"
)

type serveCmd struct {
	configPath *string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API, websocket feed and scheduled forecasts" }
func (*serveCmd) Usage() string {
	return `montesim [-config <file>] serve

  Serves the simulation API until interrupted.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (c *serveCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.LoadWithEnv(*c.configPath)
	if err != nil {
		log.Printf("config load failed: %v", err)
		return subcommands.ExitUsageError
	}
	log.Printf("env=%s provider=%s cache=%s", cfg.Environment, cfg.Fetch.Provider, cfg.Fetch.Cache.Backend)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Printf("app initialization failed: %v", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
