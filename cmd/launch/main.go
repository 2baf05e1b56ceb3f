package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	launchcmd "github.com/vestige-labs/vestige/internal/cmd/launch"
	"github.com/vestige-labs/vestige/internal/platform/config"
)

func main() {
	cfg, err := launchcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := launchcmd.Run(ctx, cfg); err != nil {
		config.Exitf("launch server: %v", err)
	}
}
