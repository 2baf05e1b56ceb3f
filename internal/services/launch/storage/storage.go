package storage

import (
	"context"
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a concurrent writer won the same journal slot.
	ErrConflict = errors.New("storage write conflict")
)

// RecordReader reads record envelopes.
type RecordReader interface {
	GetRecord(ctx context.Context, key address.Key) (record.Envelope, error)
}

// RecordLister lists committed records carrying an owner tag, in key order.
type RecordLister interface {
	ListRecords(ctx context.Context, owner record.Owner) ([]record.Envelope, error)
}

// RecordDeleter drops committed records. Missing records are not an error.
type RecordDeleter interface {
	DeleteRecord(ctx context.Context, key address.Key) error
}

// RecordWriter writes record envelopes.
type RecordWriter interface {
	PutRecord(ctx context.Context, env record.Envelope) error
}

// EventAppender appends events to a launch journal, assigning sequence,
// hashes, and signatures.
type EventAppender interface {
	AppendEvents(ctx context.Context, events ...event.Event) ([]event.Event, error)
}

// EventReader pages a launch journal in sequence order.
type EventReader interface {
	ListEvents(ctx context.Context, launchID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// Tx is the read-write view one operation runs against.
type Tx interface {
	assets.Store
	RecordReader
	RecordWriter
	EventAppender
}

// Store is a venue's persistent state.
type Store interface {
	RecordReader
	RecordLister
	RecordDeleter
	EventReader
	GetBalance(ctx context.Context, key, asset address.Key) (uint64, error)
	// Update runs fn in a transaction. Returning an error discards every
	// write fn made.
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// DefaultEventPageSize bounds ListEvents when the caller passes no limit.
const DefaultEventPageSize = 100
