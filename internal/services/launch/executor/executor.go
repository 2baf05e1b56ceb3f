package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/platform/logging"
	"github.com/vestige-labs/vestige/internal/services/launch/access"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/engine"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/memory"
)

// Config wires an Executor.
type Config struct {
	// Identity names this executor. Delegations pinned to another identity
	// are refused.
	Identity string
	Deriver  address.Deriver
	// Public reads launch records from the public ledger. The executor
	// never writes there.
	Public PublicReader
	// Store keeps held records and the private journal. It must accept
	// private events. Nil means an in-memory store that does not survive a
	// restart.
	Store      storage.Store
	Registries engine.Registries
	Access     *access.Registry
	Keyring    *integrity.Keyring
	Logger     *zap.Logger
	Clock      func() time.Time
}

// PublicReader reads the public ledger.
type PublicReader interface {
	storage.RecordReader
	storage.RecordLister
}

// Delegation hands one record to the executor.
type Delegation struct {
	Record record.Envelope
	// Seeds must derive Record.Key.
	Seeds [][]byte
	// Pin optionally names the executor that must accept the record.
	Pin string
	// Members may view the record. Empty means public.
	Members []address.Key
}

// Stats reports executor activity.
type Stats struct {
	Held          int
	Delegations   int64
	Undelegations int64
	Commits       int64
	Rejections    int64
}

type liveRecord struct {
	kind    address.Kind
	exiting bool
}

// Executor holds delegated records and applies private commands to them.
type Executor struct {
	identity string
	deriver  address.Deriver
	public   PublicReader
	commands *command.Registry
	access   *access.Registry
	logger   *zap.Logger
	now      func() time.Time
	store    storage.Store

	mu   sync.Mutex
	live map[address.Key]*liveRecord

	delegations   *atomic.Int64
	undelegations *atomic.Int64
	commits       *atomic.Int64
	rejections    *atomic.Int64
}

// New returns an Executor. An executor over a store that already holds
// records must Recover before it serves commands.
func New(cfg Config) (*Executor, error) {
	identity := strings.TrimSpace(cfg.Identity)
	if identity == "" {
		return nil, errors.New("executor identity is required")
	}
	if cfg.Public == nil {
		return nil, errors.New("public record reader is required")
	}
	if cfg.Registries.Commands == nil || cfg.Registries.Events == nil {
		return nil, errors.New("registries are required")
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	registry := cfg.Access
	if registry == nil {
		registry = access.NewRegistry()
	}
	store := cfg.Store
	if store == nil {
		store = memory.New(
			memory.WithPrivateJournal(),
			memory.WithEventRegistry(cfg.Registries.Events),
			memory.WithKeyring(cfg.Keyring),
			memory.WithClock(now),
		)
	}
	return &Executor{
		identity: identity,
		deriver:  cfg.Deriver,
		public:   cfg.Public,
		commands: cfg.Registries.Commands,
		access:   registry,
		logger:   logging.OrNop(cfg.Logger).Named("executor"),
		now:      now,
		store:         store,
		live:          make(map[address.Key]*liveRecord),
		delegations:   atomic.NewInt64(0),
		undelegations: atomic.NewInt64(0),
		commits:       atomic.NewInt64(0),
		rejections:    atomic.NewInt64(0),
	}, nil
}

// Identity returns the executor's name.
func (e *Executor) Identity() string {
	return e.identity
}

// Accept takes write-authority over a record.
func (e *Executor) Accept(ctx context.Context, d Delegation) error {
	if d.Pin != "" && d.Pin != e.identity {
		return apperrors.New(apperrors.CodeExecutorMismatch, fmt.Sprintf("delegation pinned to %q", d.Pin))
	}
	key := d.Record.Key
	if !address.VerifySeeds(key, d.Seeds) {
		return apperrors.New(apperrors.CodeInvalidArgument, "seeds do not derive the record key")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.live[key]; ok {
		return apperrors.New(apperrors.CodeAlreadyDelegated, "record already delegated")
	}
	env := d.Record.Clone()
	env.Owner = record.OwnerExecutor
	env.ExecutorID = e.identity
	if err := e.store.Update(ctx, func(tx storage.Tx) error {
		return tx.PutRecord(ctx, env)
	}); err != nil {
		return fmt.Errorf("store delegated record: %w", err)
	}
	e.live[key] = &liveRecord{kind: env.Kind}
	e.access.CreatePermission(key, d.Members)
	e.delegations.Inc()
	e.logger.Info("record delegated", zap.String("record", address.Describe(env.Kind, key)))
	return nil
}

// Holds reports whether the executor currently owns key.
func (e *Executor) Holds(key address.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.live[key]
	return ok && !rec.exiting
}

// Snapshot freezes records for hand-back. The returned
// envelopes are tagged in transit. Calling Snapshot again on frozen records
// returns the same bytes.
func (e *Executor) Snapshot(ctx context.Context, keys ...address.Key) ([]record.Envelope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, key := range keys {
		if _, ok := e.live[key]; !ok {
			return nil, apperrors.New(apperrors.CodeNotDelegated, "record is not held by this executor")
		}
	}
	out := make([]record.Envelope, 0, len(keys))
	for _, key := range keys {
		env, err := e.store.GetRecord(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read held record: %w", err)
		}
		env.Owner = record.OwnerInTransit
		out = append(out, env)
		e.live[key].exiting = true
	}
	return out, nil
}

// Release forgets records after their snapshot has been published.
func (e *Executor) Release(ctx context.Context, keys ...address.Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, key := range keys {
		rec, ok := e.live[key]
		if !ok {
			continue
		}
		if !rec.exiting {
			return apperrors.New(apperrors.CodeInvalidArgument, "record must be snapshotted before release")
		}
		if err := e.store.DeleteRecord(ctx, key); err != nil {
			return fmt.Errorf("drop released record: %w", err)
		}
		delete(e.live, key)
		e.access.Revoke(key)
		e.undelegations.Inc()
		e.logger.Info("record undelegated", zap.String("record", address.Describe(rec.kind, key)))
	}
	return nil
}

// View returns a held record if viewer may read it.
func (e *Executor) View(ctx context.Context, key, viewer address.Key) (record.Envelope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	env, ok, err := e.currentLocked(ctx, key)
	if err != nil {
		return record.Envelope{}, err
	}
	if !ok {
		return record.Envelope{}, apperrors.New(apperrors.CodeNotFound, "record is not held by this executor")
	}
	if err := e.access.Check(key, viewer); err != nil {
		return record.Envelope{}, apperrors.Wrap(apperrors.CodeUnauthorized, "record is private", err)
	}
	return env, nil
}

// Journal pages the private journal of a launch.
func (e *Executor) Journal(ctx context.Context, launchID string, afterSeq uint64, limit int) ([]event.Event, error) {
	return e.store.ListEvents(ctx, launchID, afterSeq, limit)
}

// Stats returns activity counters.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	held := len(e.live)
	e.mu.Unlock()
	return Stats{
		Held:          held,
		Delegations:   e.delegations.Load(),
		Undelegations: e.undelegations.Load(),
		Commits:       e.commits.Load(),
		Rejections:    e.rejections.Load(),
	}
}

// currentLocked returns a held record. Frozen records report not held.
func (e *Executor) currentLocked(ctx context.Context, key address.Key) (record.Envelope, bool, error) {
	rec, ok := e.live[key]
	if !ok || rec.exiting {
		return record.Envelope{}, false, nil
	}
	env, err := e.store.GetRecord(ctx, key)
	if err != nil {
		return record.Envelope{}, false, fmt.Errorf("read held record: %w", err)
	}
	return env, true, nil
}

// commitLocked writes the new record bytes and journals events in one
// private transaction.
func (e *Executor) commitLocked(ctx context.Context, events []event.Event, writes map[address.Key][]byte) error {
	if err := e.store.Update(ctx, func(tx storage.Tx) error {
		for key, data := range writes {
			env, err := tx.GetRecord(ctx, key)
			if err != nil {
				return fmt.Errorf("read held record: %w", err)
			}
			env.Data = data
			if err := tx.PutRecord(ctx, env); err != nil {
				return err
			}
		}
		_, err := tx.AppendEvents(ctx, events...)
		return err
	}); err != nil {
		return fmt.Errorf("commit private write: %w", err)
	}
	return nil
}

func (e *Executor) loadLaunch(ctx context.Context, key address.Key) (launch.State, error) {
	env, err := e.public.GetRecord(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return launch.State{}, apperrors.New(apperrors.CodeNotFound, "launch not found")
	}
	if err != nil {
		return launch.State{}, fmt.Errorf("read launch: %w", err)
	}
	if err := env.ExpectOwner(record.OwnerProtocol); err != nil {
		return launch.State{}, apperrors.Wrap(apperrors.CodeInvalidAccountData, "launch record is not owned by the protocol", err)
	}
	state, err := launch.Decode(env.Data)
	if err != nil {
		return launch.State{}, apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode launch", err)
	}
	return state, nil
}

func (e *Executor) rejected(cmd command.Command, rejection command.Rejection) error {
	e.rejections.Inc()
	e.logger.Debug("command rejected",
		zap.String("launch", cmd.LaunchID),
		zap.String("type", string(cmd.Type)),
		zap.String("code", rejection.Code),
	)
	return apperrors.New(apperrors.Code(rejection.Code), rejection.Message)
}
