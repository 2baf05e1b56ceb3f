package protocol

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// Commit transfers value from actor to the vault and records the
// commitment in the same transaction.
func (s *Service) Commit(ctx context.Context, actor, launchKey address.Key, value uint64) (participant ledger.Participant, err error) {
	ctx, span := s.startSpan(ctx, "Commit")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, ledger.CommandTypeCommit, actor, ledger.CommitPayload{Amount: value})
	if err != nil {
		return ledger.Participant{}, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		applied, asset, err := s.publicCommitment(ctx, tx, cmd, actor, launchKey)
		if err != nil {
			return err
		}
		participant = applied
		if err := s.ledger(tx).Transfer(ctx, assets.Transfer{
			From:   actor,
			To:     s.deriver.Vault(launchKey),
			Asset:  asset,
			Amount: value,
			Signer: actor,
		}); err != nil {
			return fmt.Errorf("commit to vault: %w", err)
		}
		return nil
	})
	if err != nil {
		return ledger.Participant{}, err
	}
	s.accepted(cmd, zap.Uint64("amount", value))
	return participant, nil
}

// RecordCommit records a commitment whose funds were deposited earlier. When
// the pool is delegated the commitment is applied privately and nothing
// about it reaches the public journal.
func (s *Service) RecordCommit(ctx context.Context, actor, launchKey address.Key, value uint64) (err error) {
	ctx, span := s.startSpan(ctx, "RecordCommit")
	defer func() { err = s.finish(span, err) }()

	env, err := s.store.GetRecord(ctx, s.deriver.Pool(launchKey))
	if err != nil {
		return fmt.Errorf("read pool: %w", err)
	}
	if env.Owner == record.OwnerExecutor {
		if err := s.requireExecutor(); err != nil {
			return err
		}
		return s.executor.RecordCommit(ctx, launchKey, actor, value)
	}

	cmd, err := s.command(ctx, launchKey, ledger.CommandTypeRecordCommit, actor, ledger.CommitPayload{Amount: value})
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		_, _, err := s.publicCommitment(ctx, tx, cmd, actor, launchKey)
		return err
	})
	if err != nil {
		return err
	}
	s.accepted(cmd, zap.Uint64("amount", value))
	return nil
}

// PrivateCommit debits actor's delegated custody and commits the same value
// inside the private executor.
func (s *Service) PrivateCommit(ctx context.Context, actor, launchKey address.Key, value uint64) (err error) {
	ctx, span := s.startSpan(ctx, "PrivateCommit")
	defer func() { err = s.finish(span, err) }()

	if err := s.requireExecutor(); err != nil {
		return err
	}
	return s.executor.PrivateCommit(ctx, launchKey, actor, value)
}

// publicCommitment applies a commit or record_commit to the protocol-owned
// pool and participant, and returns the launch asset for any transfer the
// caller still runs in the same transaction.
func (s *Service) publicCommitment(ctx context.Context, tx storage.Tx, cmd command.Command, actor, launchKey address.Key) (ledger.Participant, address.Key, error) {
	state, err := requireLaunch(ctx, tx, launchKey)
	if err != nil {
		return ledger.Participant{}, address.Zero, err
	}
	poolKey := s.deriver.Pool(launchKey)
	participantKey := s.deriver.Participant(launchKey, actor)
	pool, err := publicPool(ctx, tx, poolKey)
	if err != nil {
		return ledger.Participant{}, address.Zero, err
	}
	participant, err := publicParticipant(ctx, tx, participantKey, launchKey, actor)
	if err != nil {
		return ledger.Participant{}, address.Zero, err
	}

	decision := ledger.Decide(ledger.State{Launch: state, Pool: pool, Participant: participant}, cmd, s.now)
	if decision.Rejected() {
		return ledger.Participant{}, address.Zero, s.rejected(cmd, decision)
	}
	for _, evt := range decision.Events {
		pool = ledger.FoldPool(pool, evt)
		participant = ledger.FoldParticipant(participant, evt)
	}
	if err := putPublic(ctx, tx, poolKey, address.KindPool, ledger.EncodePool(pool)); err != nil {
		return ledger.Participant{}, address.Zero, err
	}
	if err := putPublic(ctx, tx, participantKey, address.KindParticipant, ledger.EncodeParticipant(participant)); err != nil {
		return ledger.Participant{}, address.Zero, err
	}
	if _, err := tx.AppendEvents(ctx, decision.Events...); err != nil {
		return ledger.Participant{}, address.Zero, err
	}
	return participant, state.Asset, nil
}

// FundCustody moves value from actor into their ephemeral custody. The
// custody record and account are opened on first use.
func (s *Service) FundCustody(ctx context.Context, actor, launchKey address.Key, value uint64) (held custody.Custody, err error) {
	ctx, span := s.startSpan(ctx, "FundCustody")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, custody.CommandTypeFund, actor, custody.AmountPayload{Amount: value})
	if err != nil {
		return custody.Custody{}, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		custodyKey := s.deriver.Custody(launchKey, actor)
		current, env, exists, err := findCustody(ctx, tx, custodyKey, launchKey, actor)
		if err != nil {
			return err
		}
		decision := custody.Decide(custody.State{
			Launch:    state,
			Custody:   current,
			Delegated: exists && env.Owner != record.OwnerProtocol,
		}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		held = current
		for _, evt := range decision.Events {
			held = custody.Fold(held, evt)
		}

		ledgerAssets := s.ledger(tx)
		if _, opened, err := tx.GetAccount(ctx, custodyKey); err != nil {
			return fmt.Errorf("read custody account: %w", err)
		} else if !opened {
			if err := ledgerAssets.Open(ctx, custodyKey, s.deriver.Authority(launchKey), actor); err != nil {
				return fmt.Errorf("open custody account: %w", err)
			}
		}
		if err := ledgerAssets.Transfer(ctx, assets.Transfer{
			From:   actor,
			To:     custodyKey,
			Asset:  state.Asset,
			Amount: value,
			Signer: actor,
		}); err != nil {
			return fmt.Errorf("fund custody: %w", err)
		}
		if err := putPublic(ctx, tx, custodyKey, address.KindCustody, custody.Encode(held)); err != nil {
			return err
		}
		_, err = tx.AppendEvents(ctx, decision.Events...)
		return err
	})
	if err != nil {
		return custody.Custody{}, err
	}
	s.accepted(cmd, zap.Uint64("amount", value))
	return held, nil
}
