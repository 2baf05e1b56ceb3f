package protocol

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// LaunchParams configures a new launch.
type LaunchParams struct {
	Asset            address.Key
	TokenSupply      uint64
	StartTime        int64
	EndTime          int64
	GraduationTarget uint64
	MinCommitment    uint64
	MaxCommitment    uint64
}

// InitializeLaunch opens a launch for (creator, asset). It creates the
// launch and pool records, opens the vault and token vault under the
// launch authority, and mints the token supply into the token vault.
func (s *Service) InitializeLaunch(ctx context.Context, creator address.Key, params LaunchParams) (state launch.State, err error) {
	ctx, span := s.startSpan(ctx, "InitializeLaunch")
	defer func() { err = s.finish(span, err) }()

	launchKey := s.deriver.Launch(creator, params.Asset)
	cmd, err := s.command(ctx, launchKey, launch.CommandTypeInitialize, creator, launch.InitializePayload{
		Launch:           launchKey,
		Creator:          creator,
		Asset:            params.Asset,
		TokenSupply:      params.TokenSupply,
		StartTime:        params.StartTime,
		EndTime:          params.EndTime,
		GraduationTarget: params.GraduationTarget,
		MinCommitment:    params.MinCommitment,
		MaxCommitment:    params.MaxCommitment,
	})
	if err != nil {
		return launch.State{}, err
	}

	err = s.store.Update(ctx, func(tx storage.Tx) error {
		current, err := findLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		decision := launch.Decide(launch.Snapshot{Launch: current}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		for _, evt := range decision.Events {
			state = launch.Fold(state, evt)
		}

		authority := s.deriver.Authority(launchKey)
		ledgerAssets := s.ledger(tx)
		if err := ledgerAssets.Open(ctx, s.deriver.Vault(launchKey), authority, creator); err != nil {
			return fmt.Errorf("open vault: %w", err)
		}
		tokenVault := s.deriver.TokenVault(launchKey)
		if err := ledgerAssets.Open(ctx, tokenVault, authority, creator); err != nil {
			return fmt.Errorf("open token vault: %w", err)
		}
		if err := ledgerAssets.Mint(ctx, tokenVault, s.deriver.Mint(launchKey), state.TokenSupply); err != nil {
			return fmt.Errorf("mint token supply: %w", err)
		}

		poolKey := s.deriver.Pool(launchKey)
		if err := putPublic(ctx, tx, launchKey, address.KindLaunch, launch.Encode(state)); err != nil {
			return err
		}
		if err := putPublic(ctx, tx, poolKey, address.KindPool, ledger.EncodePool(ledger.Pool{Key: poolKey, Launch: launchKey})); err != nil {
			return err
		}
		_, err = tx.AppendEvents(ctx, decision.Events...)
		return err
	})
	if err != nil {
		return launch.State{}, err
	}
	s.accepted(cmd)
	return state, nil
}

// MarkDelegated flips the launch's delegated flag. Ownership of child
// records moves through DelegatePool and DelegateParticipant.
func (s *Service) MarkDelegated(ctx context.Context, actor, launchKey address.Key) (err error) {
	ctx, span := s.startSpan(ctx, "MarkDelegated")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, launch.CommandTypeMarkDelegate, actor, nil)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		return s.applyLaunch(ctx, tx, cmd, launch.Snapshot{Launch: state})
	})
	if err != nil {
		return err
	}
	s.accepted(cmd)
	return nil
}

// Deposit moves funds from actor into the vault ahead of RecordCommit.
func (s *Service) Deposit(ctx context.Context, actor, launchKey address.Key, value uint64) (err error) {
	ctx, span := s.startSpan(ctx, "Deposit")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, launch.CommandTypeDeposit, actor, launch.DepositPayload{Amount: value})
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		decision := launch.Decide(launch.Snapshot{Launch: state}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		if err := s.ledger(tx).Transfer(ctx, assets.Transfer{
			From:   actor,
			To:     s.deriver.Vault(launchKey),
			Asset:  state.Asset,
			Amount: value,
			Signer: actor,
		}); err != nil {
			return fmt.Errorf("deposit to vault: %w", err)
		}
		_, err = tx.AppendEvents(ctx, decision.Events...)
		return err
	})
	if err != nil {
		return err
	}
	s.accepted(cmd, zap.Uint64("amount", value))
	return nil
}

// Graduate closes a launch whose pool the protocol owns, once the target is
// reached or the deadline has passed. Any actor may call it.
func (s *Service) Graduate(ctx context.Context, actor, launchKey address.Key) (state launch.State, err error) {
	ctx, span := s.startSpan(ctx, "Graduate")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, launch.CommandTypeGraduate, actor, nil)
	if err != nil {
		return launch.State{}, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		current, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		snap := launch.Snapshot{Launch: current}
		env, err := tx.GetRecord(ctx, s.deriver.Pool(launchKey))
		if err != nil {
			return fmt.Errorf("read pool: %w", err)
		}
		if env.Owner == record.OwnerProtocol {
			pool, err := trustedPool(env.Data)
			if err != nil {
				return err
			}
			snap.Pool = pool.Totals()
			snap.PoolReadable = true
		}
		state, err = s.decideLaunch(ctx, tx, cmd, snap)
		return err
	})
	if err != nil {
		return launch.State{}, err
	}
	s.accepted(cmd)
	return state, nil
}

// FinalizeGraduation copies the totals of a pool that graduated privately
// onto the launch and clears the delegated flag. The pool may still be in
// transit, so its bytes are parsed and validated before they are trusted.
func (s *Service) FinalizeGraduation(ctx context.Context, actor, launchKey address.Key) (state launch.State, err error) {
	ctx, span := s.startSpan(ctx, "FinalizeGraduation")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, launch.CommandTypeFinalize, actor, nil)
	if err != nil {
		return launch.State{}, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		current, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		snap := launch.Snapshot{Launch: current}
		env, err := tx.GetRecord(ctx, s.deriver.Pool(launchKey))
		if err != nil {
			return fmt.Errorf("read pool: %w", err)
		}
		if env.Owner != record.OwnerExecutor {
			if pool, err := trustedPool(env.Data); err == nil {
				snap.Pool = pool.Totals()
				snap.PoolReadable = true
			}
		}
		state, err = s.decideLaunch(ctx, tx, cmd, snap)
		return err
	})
	if err != nil {
		return launch.State{}, err
	}
	s.accepted(cmd)
	return state, nil
}

// WithdrawFunds pays the vault's balance above the reserve to the creator.
func (s *Service) WithdrawFunds(ctx context.Context, actor, launchKey address.Key) (withdrawn uint64, err error) {
	ctx, span := s.startSpan(ctx, "WithdrawFunds")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, launch.CommandTypeWithdraw, actor, nil)
	if err != nil {
		return 0, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		ledgerAssets := s.ledger(tx)
		vault := s.deriver.Vault(launchKey)
		balance, err := ledgerAssets.Balance(ctx, vault, state.Asset)
		if err != nil {
			return fmt.Errorf("read vault balance: %w", err)
		}
		decision := launch.Decide(launch.Snapshot{
			Launch:       state,
			VaultBalance: balance,
			Reserve:      ledgerAssets.Reserve(state.Asset),
		}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		var payload launch.WithdrawPayload
		if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
			return fmt.Errorf("decode withdraw payload: %w", err)
		}
		if err := ledgerAssets.Transfer(ctx, assets.Transfer{
			From:   vault,
			To:     payload.Recipient,
			Asset:  state.Asset,
			Amount: payload.Amount,
			Signer: s.deriver.Authority(launchKey),
		}); err != nil {
			return fmt.Errorf("withdraw from vault: %w", err)
		}
		withdrawn = payload.Amount
		_, err = tx.AppendEvents(ctx, decision.Events...)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.accepted(cmd)
	return withdrawn, nil
}

// applyLaunch decides a launch command and persists the folded launch.
func (s *Service) applyLaunch(ctx context.Context, tx storage.Tx, cmd command.Command, snap launch.Snapshot) error {
	_, err := s.decideLaunch(ctx, tx, cmd, snap)
	return err
}

func (s *Service) decideLaunch(ctx context.Context, tx storage.Tx, cmd command.Command, snap launch.Snapshot) (launch.State, error) {
	decision := launch.Decide(snap, cmd, s.now)
	if decision.Rejected() {
		return launch.State{}, s.rejected(cmd, decision)
	}
	state := snap.Launch
	for _, evt := range decision.Events {
		state = launch.Fold(state, evt)
	}
	if err := putPublic(ctx, tx, state.Key, address.KindLaunch, launch.Encode(state)); err != nil {
		return launch.State{}, err
	}
	if _, err := tx.AppendEvents(ctx, decision.Events...); err != nil {
		return launch.State{}, err
	}
	return state, nil
}
