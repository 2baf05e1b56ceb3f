package main

import (
	"os"

	"github.com/vestige-labs/vestige/internal/platform/config"
	"github.com/vestige-labs/vestige/internal/tools/walletkey"
)

func main() {
	if err := walletkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate wallet: %v", err)
	}
}
