package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// SweepToVault moves the amount user committed through custody into the
// vault. Any actor may call it once the custody is back with the protocol.
// Repeated calls find the custody drained and report nothing to sweep.
func (s *Service) SweepToVault(ctx context.Context, actor, launchKey, user address.Key) (swept uint64, err error) {
	ctx, span := s.startSpan(ctx, "SweepToVault")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, custody.CommandTypeSweep, actor, nil)
	if err != nil {
		return 0, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		moved, err := s.moveCustody(ctx, tx, cmd, launchKey, user, s.deriver.Vault(launchKey))
		swept = moved
		return err
	})
	if err != nil {
		return 0, err
	}
	s.accepted(cmd, zap.Uint64("amount", swept))
	return swept, nil
}

// ReclaimCustody returns the part of user's custody that was funded but
// never committed. Only user may call it, after the launch has graduated.
func (s *Service) ReclaimCustody(ctx context.Context, actor, launchKey address.Key) (reclaimed uint64, err error) {
	ctx, span := s.startSpan(ctx, "ReclaimCustody")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, custody.CommandTypeReclaim, actor, nil)
	if err != nil {
		return 0, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		moved, err := s.moveCustody(ctx, tx, cmd, launchKey, actor, actor)
		reclaimed = moved
		return err
	})
	if err != nil {
		return 0, err
	}
	s.accepted(cmd, zap.Uint64("amount", reclaimed))
	return reclaimed, nil
}

// moveCustody decides a sweep or reclaim against user's custody, transfers
// the decided amount to dest, and persists the folded record.
func (s *Service) moveCustody(ctx context.Context, tx storage.Tx, cmd command.Command, launchKey, user, dest address.Key) (uint64, error) {
	state, err := requireLaunch(ctx, tx, launchKey)
	if err != nil {
		return 0, err
	}
	custodyKey := s.deriver.Custody(launchKey, user)
	held, env, exists, err := findCustody(ctx, tx, custodyKey, launchKey, user)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, apperrors.New(apperrors.CodeNotFound, "custody not found")
	}
	ledgerAssets := s.ledger(tx)
	physical, err := ledgerAssets.Balance(ctx, custodyKey, state.Asset)
	if err != nil {
		return 0, fmt.Errorf("read custody balance: %w", err)
	}

	decision := custody.Decide(custody.State{
		Launch:          state,
		Custody:         held,
		Delegated:       env.Owner != record.OwnerProtocol,
		Participant:     ledger.Participant{Key: s.deriver.Participant(launchKey, user), Launch: launchKey, User: user},
		PhysicalBalance: physical,
		Reserve:         ledgerAssets.Reserve(state.Asset),
	}, cmd, s.now)
	if decision.Rejected() {
		return 0, s.rejected(cmd, decision)
	}
	var payload custody.AmountPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		return 0, fmt.Errorf("decode custody payload: %w", err)
	}
	if err := ledgerAssets.Transfer(ctx, assets.Transfer{
		From:   custodyKey,
		To:     dest,
		Asset:  state.Asset,
		Amount: payload.Amount,
		Signer: s.deriver.Authority(launchKey),
	}); err != nil {
		return 0, fmt.Errorf("move custody funds: %w", err)
	}
	for _, evt := range decision.Events {
		held = custody.Fold(held, evt)
	}
	if err := putPublic(ctx, tx, custodyKey, address.KindCustody, custody.Encode(held)); err != nil {
		return 0, err
	}
	if _, err := tx.AppendEvents(ctx, decision.Events...); err != nil {
		return 0, err
	}
	return payload.Amount, nil
}

// CalculateAllocation computes user's weighted token allocation once the
// launch has graduated. Any actor may call it; it runs once per
// participant.
func (s *Service) CalculateAllocation(ctx context.Context, actor, launchKey, user address.Key) (participant ledger.Participant, err error) {
	ctx, span := s.startSpan(ctx, "CalculateAllocation")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, ledger.CommandTypeCalculateAllocation, actor, nil)
	if err != nil {
		return ledger.Participant{}, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		participantKey := s.deriver.Participant(launchKey, user)
		current, err := publicParticipant(ctx, tx, participantKey, launchKey, user)
		if err != nil {
			return err
		}
		decision := ledger.Decide(ledger.State{Launch: state, Participant: current, Allocation: s.allocation}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		participant = current
		for _, evt := range decision.Events {
			participant = ledger.FoldParticipant(participant, evt)
		}
		if err := putPublic(ctx, tx, participantKey, address.KindParticipant, ledger.EncodeParticipant(participant)); err != nil {
			return err
		}
		_, err = tx.AppendEvents(ctx, decision.Events...)
		return err
	})
	if err != nil {
		return ledger.Participant{}, err
	}
	s.accepted(cmd, zap.String("user", user.String()))
	return participant, nil
}

// ClaimTokens pays actor's allocation out of the token vault. It runs once.
func (s *Service) ClaimTokens(ctx context.Context, actor, launchKey address.Key) (claimed uint64, err error) {
	ctx, span := s.startSpan(ctx, "ClaimTokens")
	defer func() { err = s.finish(span, err) }()

	cmd, err := s.command(ctx, launchKey, ledger.CommandTypeClaim, actor, nil)
	if err != nil {
		return 0, err
	}
	err = s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		participantKey := s.deriver.Participant(launchKey, actor)
		participant, err := publicParticipant(ctx, tx, participantKey, launchKey, actor)
		if err != nil {
			return err
		}
		decision := ledger.Decide(ledger.State{Launch: state, Participant: participant}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		claimed = participant.AllocatedTokens()
		if err := s.ledger(tx).Transfer(ctx, assets.Transfer{
			From:   s.deriver.TokenVault(launchKey),
			To:     actor,
			Asset:  s.deriver.Mint(launchKey),
			Amount: claimed,
			Signer: s.deriver.Authority(launchKey),
		}); err != nil {
			return fmt.Errorf("pay allocation: %w", err)
		}
		for _, evt := range decision.Events {
			participant = ledger.FoldParticipant(participant, evt)
		}
		if err := putPublic(ctx, tx, participantKey, address.KindParticipant, ledger.EncodeParticipant(participant)); err != nil {
			return err
		}
		_, err = tx.AppendEvents(ctx, decision.Events...)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.accepted(cmd, zap.Uint64("tokens", claimed))
	return claimed, nil
}

// ErrFaucetDisabled is returned by Faucet unless the service enables it.
var ErrFaucetDisabled = errors.New("faucet is disabled")

// Faucet mints native funds to a wallet. Development deployments enable it
// so wallets can pay for commitments and account reserves.
func (s *Service) Faucet(ctx context.Context, to address.Key, value uint64) (err error) {
	ctx, span := s.startSpan(ctx, "Faucet")
	defer func() { err = s.finish(span, err) }()

	if !s.faucet {
		return apperrors.Wrap(apperrors.CodeUnauthorized, ErrFaucetDisabled.Error(), ErrFaucetDisabled)
	}
	if value == 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, "faucet amount must be positive")
	}
	return s.store.Update(ctx, func(tx storage.Tx) error {
		return s.ledger(tx).Mint(ctx, to, assets.Native, value)
	})
}
