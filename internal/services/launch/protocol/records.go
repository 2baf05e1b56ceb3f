package protocol

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// findLaunch reads a launch record. A missing launch is the zero state.
func findLaunch(ctx context.Context, r storage.RecordReader, key address.Key) (launch.State, error) {
	env, err := r.GetRecord(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return launch.State{}, nil
	}
	if err != nil {
		return launch.State{}, fmt.Errorf("read launch: %w", err)
	}
	if err := env.ExpectOwner(record.OwnerProtocol); err != nil {
		return launch.State{}, apperrors.Wrap(apperrors.CodeInvalidAccountData, "launch record is not owned by the protocol", err)
	}
	state, err := launch.Decode(env.Data)
	if err != nil {
		return launch.State{}, fmt.Errorf("decode launch: %w", err)
	}
	return state, nil
}

// requireLaunch reads a launch record that must exist.
func requireLaunch(ctx context.Context, r storage.RecordReader, key address.Key) (launch.State, error) {
	state, err := findLaunch(ctx, r, key)
	if err != nil {
		return launch.State{}, err
	}
	if !state.Initialized {
		return launch.State{}, apperrors.New(apperrors.CodeNotFound, "launch not found")
	}
	return state, nil
}

// requireProtocol refuses public mutation of a record the protocol does
// not currently own.
func requireProtocol(env record.Envelope) error {
	switch env.Owner {
	case record.OwnerProtocol:
		return nil
	case record.OwnerExecutor:
		return apperrors.WithMetadata(apperrors.CodeAlreadyDelegated, "record is delegated to the private executor",
			map[string]string{"record": env.Key.String(), "executor": env.ExecutorID})
	default:
		return apperrors.WithMetadata(apperrors.CodeAlreadyDelegated, "record is being handed back",
			map[string]string{"record": env.Key.String()})
	}
}

// publicPool reads the pool for a public mutation.
func publicPool(ctx context.Context, r storage.RecordReader, key address.Key) (ledger.Pool, error) {
	env, err := r.GetRecord(ctx, key)
	if err != nil {
		return ledger.Pool{}, fmt.Errorf("read pool: %w", err)
	}
	if err := requireProtocol(env); err != nil {
		return ledger.Pool{}, err
	}
	return trustedPool(env.Data)
}

// trustedPool parses and validates pool bytes before they are trusted.
func trustedPool(raw []byte) (ledger.Pool, error) {
	view, err := record.Promote(record.Untrusted[ledger.Pool](raw), ledger.DecodePool, ledger.ValidatePool)
	if err != nil {
		return ledger.Pool{}, apperrors.Wrap(apperrors.CodeInvalidAccountData, "pool record is not a valid pool", err)
	}
	pool, _ := view.Value()
	return pool, nil
}

// publicParticipant reads a participant for a public mutation. A missing
// participant is returned empty with its identity filled in.
func publicParticipant(ctx context.Context, r storage.RecordReader, key, launchKey, user address.Key) (ledger.Participant, error) {
	env, err := r.GetRecord(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return ledger.Participant{Key: key, Launch: launchKey, User: user}, nil
	}
	if err != nil {
		return ledger.Participant{}, fmt.Errorf("read participant: %w", err)
	}
	if err := requireProtocol(env); err != nil {
		return ledger.Participant{}, err
	}
	participant, err := ledger.DecodeParticipant(env.Data)
	if err != nil {
		return ledger.Participant{}, fmt.Errorf("decode participant: %w", err)
	}
	return participant, nil
}

// findCustody reads a custody record in any owner state. The bytes of a
// delegated custody are stale; callers only read its owner tag then.
func findCustody(ctx context.Context, r storage.RecordReader, key, launchKey, user address.Key) (custody.Custody, record.Envelope, bool, error) {
	env, err := r.GetRecord(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return custody.Custody{Key: key, Launch: launchKey, User: user}, record.Envelope{}, false, nil
	}
	if err != nil {
		return custody.Custody{}, record.Envelope{}, false, fmt.Errorf("read custody: %w", err)
	}
	held, err := custody.Decode(env.Data)
	if err != nil {
		return custody.Custody{}, record.Envelope{}, false, fmt.Errorf("decode custody: %w", err)
	}
	return held, env, true, nil
}

// putPublic writes a protocol-owned record.
func putPublic(ctx context.Context, w storage.RecordWriter, key address.Key, kind address.Kind, data []byte) error {
	if err := w.PutRecord(ctx, record.Envelope{Key: key, Kind: kind, Owner: record.OwnerProtocol, Data: data}); err != nil {
		return fmt.Errorf("write %s: %w", address.Describe(kind, key), err)
	}
	return nil
}

