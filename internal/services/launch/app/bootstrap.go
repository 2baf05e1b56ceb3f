package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vestige-labs/vestige/internal/platform/logging"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/allocation"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/engine"
	"github.com/vestige-labs/vestige/internal/services/launch/executor"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/sqlite"
)

// Config describes one launch server process.
type Config struct {
	// GRPCAddr is the gRPC listen address, e.g. ":8090".
	GRPCAddr string
	// ExplorerAddr is the HTTP explorer listen address. Empty disables
	// the explorer.
	ExplorerAddr string
	// MaxExplorerConns caps concurrent explorer connections; 0 is
	// unlimited.
	MaxExplorerConns int
	// AllowActorHeader trusts the unsigned actor header next to wallet
	// tokens. Development only.
	AllowActorHeader bool
	DBPath           string
	// ExecutorDBPath is the executor's private SQLite store. Empty means
	// executor.db next to DBPath.
	ExecutorDBPath   string
	ProgramID        string
	ExecutorIdentity string
	EarlyBonusAlpha  uint64
	Reserve          uint64
	Faucet           bool
	Keyring          *integrity.Keyring
	Logger           *zap.Logger
	// Store overrides the SQLite ledger; tests pass an in-memory store.
	Store storage.Store
	// ExecutorStore overrides the executor's private store. With Store set
	// and no ExecutorStore the executor keeps its records in memory.
	ExecutorStore storage.Store
	Clock         func() time.Time
}

type components struct {
	store    storage.Store
	private  storage.Store
	executor *executor.Executor
	protocol *protocol.Service
}

func (c components) close() error {
	var errs []error
	if c.private != nil {
		errs = append(errs, c.private.Close())
	}
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	return errors.Join(errs...)
}

func build(cfg Config) (components, error) {
	if strings.TrimSpace(cfg.ProgramID) == "" {
		return components{}, errors.New("program id is required")
	}
	logger := logging.OrNop(cfg.Logger)
	registries := engine.MustBuildRegistries()
	deriver := address.NewDeriver(cfg.ProgramID)

	parts := components{store: cfg.Store, private: cfg.ExecutorStore}
	if parts.store == nil {
		publicPath := defaultPath(cfg.DBPath, "launch.db")
		opened, err := openStore(publicPath, cfg.Keyring, registries, cfg.Clock)
		if err != nil {
			return components{}, err
		}
		parts.store = opened
		if parts.private == nil {
			privatePath := cfg.ExecutorDBPath
			if strings.TrimSpace(privatePath) == "" {
				privatePath = filepath.Join(filepath.Dir(publicPath), "executor.db")
			}
			private, err := openStore(privatePath, cfg.Keyring, registries, cfg.Clock, sqlite.WithPrivateJournal())
			if err != nil {
				_ = parts.close()
				return components{}, fmt.Errorf("executor store: %w", err)
			}
			parts.private = private
		}
	}

	exec, err := executor.New(executor.Config{
		Identity:   cfg.ExecutorIdentity,
		Deriver:    deriver,
		Public:     parts.store,
		Store:      parts.private,
		Registries: registries,
		Keyring:    cfg.Keyring,
		Logger:     logger,
		Clock:      cfg.Clock,
	})
	if err != nil {
		_ = parts.close()
		return components{}, fmt.Errorf("new executor: %w", err)
	}
	if err := exec.Recover(context.Background()); err != nil {
		_ = parts.close()
		return components{}, fmt.Errorf("recover executor: %w", err)
	}
	parts.executor = exec

	params := allocation.DefaultParams()
	if cfg.EarlyBonusAlpha != 0 {
		params.EarlyBonusAlpha = cfg.EarlyBonusAlpha
	}
	svc, err := protocol.New(protocol.Config{
		Store:      parts.store,
		Executor:   exec,
		Deriver:    deriver,
		Registries: registries,
		Allocation: params,
		Reserve:    cfg.Reserve,
		Faucet:     cfg.Faucet,
		Logger:     logger,
		Clock:      cfg.Clock,
	})
	if err != nil {
		_ = parts.close()
		return components{}, fmt.Errorf("new protocol service: %w", err)
	}
	parts.protocol = svc
	return parts, nil
}

func defaultPath(path, name string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return filepath.Join("data", name)
	}
	return path
}

func openStore(path string, keyring *integrity.Keyring, registries engine.Registries, clock func() time.Time, opts ...sqlite.Option) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	if clock != nil {
		opts = append(opts, sqlite.WithClock(clock))
	}
	store, err := sqlite.Open(path, keyring, registries.Events, opts...)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}
