package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{configPath: configPath}, "")
	commander.Register(&runCmd{configPath: configPath, kind: "forecast"}, "simulation")
	commander.Register(&runCmd{configPath: configPath, kind: "backtest"}, "simulation")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
