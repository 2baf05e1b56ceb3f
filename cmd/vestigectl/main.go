// vestigectl is the command-line client for a vestige launch server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vestige-labs/vestige/internal/cmd/vestigectl"
	"github.com/vestige-labs/vestige/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := vestigectl.Execute(ctx); err != nil {
		config.Exitf("%v", err)
	}
}
