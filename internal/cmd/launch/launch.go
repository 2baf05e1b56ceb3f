// Package launch parses the launch server's configuration and runs it.
package launch

import (
	"context"
	"flag"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	entrypoint "github.com/vestige-labs/vestige/internal/platform/cmd"
	"github.com/vestige-labs/vestige/internal/platform/logging"
	server "github.com/vestige-labs/vestige/internal/services/launch/app"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
)

// Config holds launch command configuration.
type Config struct {
	Port             int    `env:"VESTIGE_LAUNCH_PORT" envDefault:"8090"`
	Addr             string `env:"VESTIGE_LAUNCH_ADDR"`
	ExplorerAddr     string `env:"VESTIGE_EXPLORER_ADDR" envDefault:":8091"`
	ExplorerConns    int    `env:"VESTIGE_EXPLORER_MAX_CONNS" envDefault:"256"`
	AllowActorHeader bool   `env:"VESTIGE_ALLOW_ACTOR_HEADER"`
	DBPath           string `env:"VESTIGE_LAUNCH_DB_PATH" envDefault:"data/launch.db"`
	ExecutorDBPath   string `env:"VESTIGE_EXECUTOR_DB_PATH"`
	ProgramID        string `env:"VESTIGE_PROGRAM_ID" envDefault:"vestige"`
	ExecutorIdentity string `env:"VESTIGE_EXECUTOR_IDENTITY" envDefault:"vestige-executor"`
	EarlyBonusAlpha  uint64 `env:"VESTIGE_EARLY_BONUS_ALPHA" envDefault:"50"`
	MinReserve       uint64 `env:"VESTIGE_MIN_RESERVE" envDefault:"890880"`
	Faucet           bool   `env:"VESTIGE_FAUCET"`
	LogLevel         string `env:"VESTIGE_LOG_LEVEL" envDefault:"info"`
	Keyring          integrity.Env
}

// Validate rejects a bonus above 100 percent.
func (c *Config) Validate() error {
	if c.EarlyBonusAlpha > 100 {
		return fmt.Errorf("early bonus alpha %d exceeds 100", c.EarlyBonusAlpha)
	}
	return nil
}

// ListenAddr is Addr when set, otherwise all interfaces on Port.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The launch gRPC port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The launch gRPC listen address (overrides -port)")
	fs.StringVar(&cfg.ExplorerAddr, "explorer-addr", cfg.ExplorerAddr, "The explorer HTTP listen address (empty disables it)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path of the SQLite public ledger")
	fs.StringVar(&cfg.ExecutorDBPath, "executor-db", cfg.ExecutorDBPath, "Path of the executor's private SQLite store (default: executor.db next to -db)")
	fs.BoolVar(&cfg.AllowActorHeader, "allow-actor-header", cfg.AllowActorHeader, "Trust the unsigned actor header (development only)")
	fs.BoolVar(&cfg.Faucet, "faucet", cfg.Faucet, "Allow minting native funds to any wallet")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the launch server and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	keyring, err := cfg.Keyring.Keyring()
	if err != nil {
		return fmt.Errorf("event keyring: %w", err)
	}
	logger.Info("starting launch server",
		zap.String("program_id", cfg.ProgramID),
		zap.String("executor", cfg.ExecutorIdentity),
		zap.Bool("faucet", cfg.Faucet),
		zap.Bool("allow_actor_header", cfg.AllowActorHeader),
	)
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLaunch, logger, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			GRPCAddr:         cfg.ListenAddr(),
			ExplorerAddr:     cfg.ExplorerAddr,
			MaxExplorerConns: cfg.ExplorerConns,
			AllowActorHeader: cfg.AllowActorHeader,
			DBPath:           cfg.DBPath,
			ExecutorDBPath:   cfg.ExecutorDBPath,
			ProgramID:        cfg.ProgramID,
			ExecutorIdentity: cfg.ExecutorIdentity,
			EarlyBonusAlpha:  cfg.EarlyBonusAlpha,
			Reserve:          cfg.MinReserve,
			Faucet:           cfg.Faucet,
			Keyring:          keyring,
			Logger:           logger,
		})
	})
}
