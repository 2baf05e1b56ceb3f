// Package memory is an in-process Store. An executor without a durable
// store keeps its delegated records here, and tests use it in place of
// SQLite.
//
// Update stages writes in an overlay and merges it under the store lock only
// when the callback succeeds, so a failed operation leaves nothing behind.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
)

type balanceKey struct {
	key   address.Key
	asset address.Key
}

type state struct {
	records  map[address.Key]record.Envelope
	accounts map[address.Key]assets.Account
	balances map[balanceKey]uint64
	journals map[string][]event.Event
}

func newState() state {
	return state{
		records:  make(map[address.Key]record.Envelope),
		accounts: make(map[address.Key]assets.Account),
		balances: make(map[balanceKey]uint64),
		journals: make(map[string][]event.Event),
	}
}

// Store is a mutex-guarded in-memory venue.
type Store struct {
	mu       sync.RWMutex
	base     state
	registry *event.Registry
	keyring  *integrity.Keyring
	public   bool
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithEventRegistry validates appended events against registry.
func WithEventRegistry(registry *event.Registry) Option {
	return func(s *Store) { s.registry = registry }
}

// WithKeyring signs appended chain hashes.
func WithKeyring(keyring *integrity.Keyring) Option {
	return func(s *Store) { s.keyring = keyring }
}

// WithPrivateJournal lets the journal hold private events.
func WithPrivateJournal() Option {
	return func(s *Store) { s.public = false }
}

// WithClock sets the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store. The journal is public unless
// WithPrivateJournal is given.
func New(opts ...Option) *Store {
	s := &Store{base: newState(), public: true, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetRecord returns a copy of a committed record.
func (s *Store) GetRecord(_ context.Context, key address.Key) (record.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	env, ok := s.base.records[key]
	if !ok {
		return record.Envelope{}, storage.ErrNotFound
	}
	return env.Clone(), nil
}

// GetBalance returns a committed balance.
func (s *Store) GetBalance(_ context.Context, key, asset address.Key) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base.balances[balanceKey{key, asset}], nil
}

// ListEvents pages a launch journal.
func (s *Store) ListEvents(_ context.Context, launchID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = storage.DefaultEventPageSize
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	journal := s.base.journals[launchID]
	idx := sort.Search(len(journal), func(i int) bool { return journal[i].Seq > afterSeq })
	end := min(idx+limit, len(journal))
	return append([]event.Event(nil), journal[idx:end]...), nil
}

// Update runs fn against a staged overlay and commits it on success.
func (s *Store) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &txn{store: s, staged: newState()}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.staged.records {
		s.base.records[k] = v
	}
	for k, v := range tx.staged.accounts {
		s.base.accounts[k] = v
	}
	for k, v := range tx.staged.balances {
		s.base.balances[k] = v
	}
	for id, events := range tx.staged.journals {
		s.base.journals[id] = append(s.base.journals[id], events...)
	}
	return nil
}

// ListRecords returns copies of committed records tagged owner.
func (s *Store) ListRecords(_ context.Context, owner record.Owner) ([]record.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Envelope
	for _, env := range s.base.records {
		if env.Owner == owner {
			out = append(out, env.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

// DeleteRecord removes a committed record. Missing records are not an error.
func (s *Store) DeleteRecord(_ context.Context, key address.Key) error {
	s.mu.Lock()
	delete(s.base.records, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

type txn struct {
	store  *Store
	staged state
}

func (t *txn) GetRecord(_ context.Context, key address.Key) (record.Envelope, error) {
	if env, ok := t.staged.records[key]; ok {
		return env.Clone(), nil
	}
	env, ok := t.store.base.records[key]
	if !ok {
		return record.Envelope{}, storage.ErrNotFound
	}
	return env.Clone(), nil
}

func (t *txn) PutRecord(_ context.Context, env record.Envelope) error {
	env = env.Clone()
	env.UpdatedAt = t.store.now().UTC()
	t.staged.records[env.Key] = env
	return nil
}

func (t *txn) GetAccount(_ context.Context, key address.Key) (assets.Account, bool, error) {
	if a, ok := t.staged.accounts[key]; ok {
		return a, true, nil
	}
	a, ok := t.store.base.accounts[key]
	return a, ok, nil
}

func (t *txn) PutAccount(_ context.Context, account assets.Account) error {
	t.staged.accounts[account.Key] = account
	return nil
}

func (t *txn) GetBalance(_ context.Context, key, asset address.Key) (uint64, error) {
	bk := balanceKey{key, asset}
	if v, ok := t.staged.balances[bk]; ok {
		return v, nil
	}
	return t.store.base.balances[bk], nil
}

func (t *txn) PutBalance(_ context.Context, key, asset address.Key, value uint64) error {
	t.staged.balances[balanceKey{key, asset}] = value
	return nil
}

func (t *txn) AppendEvents(_ context.Context, events ...event.Event) ([]event.Event, error) {
	out := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if t.store.registry != nil {
			validated, err := t.store.registry.ValidateForAppend(evt, t.store.public)
			if err != nil {
				return nil, err
			}
			evt = validated
		}
		committed := t.store.base.journals[evt.LaunchID]
		staged := t.staged.journals[evt.LaunchID]
		prev := ""
		seq := uint64(len(committed) + len(staged) + 1)
		switch {
		case len(staged) > 0:
			prev = staged[len(staged)-1].ChainHash
		case len(committed) > 0:
			prev = committed[len(committed)-1].ChainHash
		}
		if evt.Timestamp.IsZero() {
			evt.Timestamp = t.store.now()
		}
		evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)
		evt.Seq = seq
		sealed, err := integrity.Seal(t.store.keyring, evt, prev)
		if err != nil {
			return nil, fmt.Errorf("seal event %d: %w", seq, err)
		}
		t.staged.journals[evt.LaunchID] = append(staged, sealed)
		out = append(out, sealed)
	}
	return out, nil
}
