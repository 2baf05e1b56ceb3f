package protocol

import (
	"context"
	"fmt"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

// Addresses lists the derived keys of a launch.
type Addresses struct {
	Launch     address.Key `json:"launch"`
	Pool       address.Key `json:"pool"`
	Vault      address.Key `json:"vault"`
	TokenVault address.Key `json:"token_vault"`
	Authority  address.Key `json:"authority"`
	Mint       address.Key `json:"mint"`
}

// Ownership is the owner tag of a public record.
type Ownership struct {
	Key        address.Key  `json:"key"`
	Owner      record.Owner `json:"owner"`
	ExecutorID string       `json:"executor_id,omitempty"`
}

// PoolView is the public view of a pool. Pool is nil while the executor
// holds it.
type PoolView struct {
	Ownership
	Pool *ledger.Pool `json:"pool,omitempty"`
}

// ParticipantView is the public view of a participant record.
type ParticipantView struct {
	Ownership
	Participant *ledger.Participant `json:"participant,omitempty"`
}

// CustodyView is the public view of a custody record.
type CustodyView struct {
	Ownership
	Custody *custody.Custody `json:"custody,omitempty"`
}

// LaunchKey derives the launch key of (creator, asset).
func (s *Service) LaunchKey(creator, asset address.Key) address.Key {
	return s.deriver.Launch(creator, asset)
}

// Addresses returns the derived keys of a launch.
func (s *Service) Addresses(launchKey address.Key) Addresses {
	return Addresses{
		Launch:     launchKey,
		Pool:       s.deriver.Pool(launchKey),
		Vault:      s.deriver.Vault(launchKey),
		TokenVault: s.deriver.TokenVault(launchKey),
		Authority:  s.deriver.Authority(launchKey),
		Mint:       s.deriver.Mint(launchKey),
	}
}

// Launch returns a launch and its derived phase.
func (s *Service) Launch(ctx context.Context, launchKey address.Key) (launch.State, launch.Phase, error) {
	state, err := requireLaunch(ctx, s.store, launchKey)
	if err != nil {
		return launch.State{}, "", mapError(err)
	}
	var totals launch.PoolTotals
	env, err := s.store.GetRecord(ctx, s.deriver.Pool(launchKey))
	if err != nil {
		return launch.State{}, "", mapError(fmt.Errorf("read pool: %w", err))
	}
	if env.Owner != record.OwnerExecutor {
		if pool, err := trustedPool(env.Data); err == nil {
			totals = pool.Totals()
		}
	}
	return state, launch.DerivePhase(state, totals), nil
}

// Pool returns the public view of a launch's pool.
func (s *Service) Pool(ctx context.Context, launchKey address.Key) (PoolView, error) {
	env, err := s.store.GetRecord(ctx, s.deriver.Pool(launchKey))
	if err != nil {
		return PoolView{}, mapError(fmt.Errorf("read pool: %w", err))
	}
	view := PoolView{Ownership: ownership(env)}
	if env.Owner != record.OwnerExecutor {
		pool, err := trustedPool(env.Data)
		if err != nil {
			return PoolView{}, err
		}
		view.Pool = &pool
	}
	return view, nil
}

// Participant returns the public view of user's participant record.
func (s *Service) Participant(ctx context.Context, launchKey, user address.Key) (ParticipantView, error) {
	env, err := s.store.GetRecord(ctx, s.deriver.Participant(launchKey, user))
	if err != nil {
		return ParticipantView{}, mapError(fmt.Errorf("read participant: %w", err))
	}
	view := ParticipantView{Ownership: ownership(env)}
	if env.Owner != record.OwnerExecutor {
		participant, err := ledger.DecodeParticipant(env.Data)
		if err != nil {
			return ParticipantView{}, mapError(err)
		}
		view.Participant = &participant
	}
	return view, nil
}

// Custody returns the public view of user's custody record.
func (s *Service) Custody(ctx context.Context, launchKey, user address.Key) (CustodyView, error) {
	env, err := s.store.GetRecord(ctx, s.deriver.Custody(launchKey, user))
	if err != nil {
		return CustodyView{}, mapError(fmt.Errorf("read custody: %w", err))
	}
	view := CustodyView{Ownership: ownership(env)}
	if env.Owner != record.OwnerExecutor {
		held, err := custody.Decode(env.Data)
		if err != nil {
			return CustodyView{}, mapError(err)
		}
		view.Custody = &held
	}
	return view, nil
}

// Balance returns the physical balance of key in asset.
func (s *Service) Balance(ctx context.Context, key, asset address.Key) (uint64, error) {
	value, err := s.store.GetBalance(ctx, key, asset)
	if err != nil {
		return 0, mapError(fmt.Errorf("read balance: %w", err))
	}
	return value, nil
}

// Events pages the public journal of a launch.
func (s *Service) Events(ctx context.Context, launchKey address.Key, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "limit must not be negative")
	}
	events, err := s.store.ListEvents(ctx, launchKey.String(), afterSeq, limit)
	if err != nil {
		return nil, mapError(fmt.Errorf("list events: %w", err))
	}
	return events, nil
}

func ownership(env record.Envelope) Ownership {
	return Ownership{Key: env.Key, Owner: env.Owner, ExecutorID: env.ExecutorID}
}
