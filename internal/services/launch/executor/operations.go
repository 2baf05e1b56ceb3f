package executor

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

// RecordCommit applies a deposit-path commitment to the delegated pool and
// participant records of user.
func (e *Executor) RecordCommit(ctx context.Context, launchKey, user address.Key, value uint64) error {
	cmd, err := e.command(launchKey, ledger.CommandTypePrivateRecordCommit, user, ledger.CommitPayload{Amount: value})
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	state, err := e.loadLaunch(ctx, launchKey)
	if err != nil {
		return err
	}
	poolKey := e.deriver.Pool(launchKey)
	participantKey := e.deriver.Participant(launchKey, user)
	pool, err := e.heldPool(ctx, poolKey)
	if err != nil {
		return err
	}
	participant, err := e.heldParticipant(ctx, participantKey)
	if err != nil {
		return err
	}

	decision := ledger.Decide(ledger.State{Launch: state, Pool: pool, Participant: participant}, cmd, e.now)
	if decision.Rejected() {
		return e.rejected(cmd, decision.Rejections[0])
	}
	for _, evt := range decision.Events {
		pool = ledger.FoldPool(pool, evt)
		participant = ledger.FoldParticipant(participant, evt)
	}
	if err := e.commitLocked(ctx, decision.Events, map[address.Key][]byte{
		poolKey:        ledger.EncodePool(pool),
		participantKey: ledger.EncodeParticipant(participant),
	}); err != nil {
		return err
	}
	e.commits.Inc()
	e.logger.Debug("private commitment recorded", zap.String("launch", cmd.LaunchID), zap.String("path", ledger.PathDeposit))
	return nil
}

// PrivateCommit debits user's delegated custody and applies the same value
// as a commitment. The debit and the commitment land together or not at all.
func (e *Executor) PrivateCommit(ctx context.Context, launchKey, user address.Key, value uint64) error {
	cmd, err := e.command(launchKey, custody.CommandTypePrivateCommit, user, custody.AmountPayload{Amount: value})
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	state, err := e.loadLaunch(ctx, launchKey)
	if err != nil {
		return err
	}
	poolKey := e.deriver.Pool(launchKey)
	participantKey := e.deriver.Participant(launchKey, user)
	custodyKey := e.deriver.Custody(launchKey, user)
	pool, err := e.heldPool(ctx, poolKey)
	if err != nil {
		return err
	}
	participant, err := e.heldParticipant(ctx, participantKey)
	if err != nil {
		return err
	}
	held, delegated, err := e.heldCustody(ctx, custodyKey)
	if err != nil {
		return err
	}

	decision := custody.Decide(custody.State{
		Launch:      state,
		Custody:     held,
		Delegated:   delegated,
		Pool:        pool,
		Participant: participant,
	}, cmd, e.now)
	if decision.Rejected() {
		return e.rejected(cmd, decision.Rejections[0])
	}
	for _, evt := range decision.Events {
		held = custody.Fold(held, evt)
		pool = ledger.FoldPool(pool, evt)
		participant = ledger.FoldParticipant(participant, evt)
	}
	if err := e.commitLocked(ctx, decision.Events, map[address.Key][]byte{
		poolKey:        ledger.EncodePool(pool),
		participantKey: ledger.EncodeParticipant(participant),
		custodyKey:     custody.Encode(held),
	}); err != nil {
		return err
	}
	e.commits.Inc()
	e.logger.Debug("private commitment recorded", zap.String("launch", cmd.LaunchID), zap.String("path", ledger.PathCustody))
	return nil
}

// GraduatePool marks the delegated pool graduated once the target is
// reached or the deadline has passed. Any actor may trigger it. The caller
// hands the pool back afterwards.
func (e *Executor) GraduatePool(ctx context.Context, launchKey, actor address.Key) (ledger.Pool, error) {
	cmd, err := e.command(launchKey, ledger.CommandTypeGraduatePool, actor, nil)
	if err != nil {
		return ledger.Pool{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	state, err := e.loadLaunch(ctx, launchKey)
	if err != nil {
		return ledger.Pool{}, err
	}
	poolKey := e.deriver.Pool(launchKey)
	pool, err := e.heldPool(ctx, poolKey)
	if err != nil {
		return ledger.Pool{}, err
	}

	decision := ledger.Decide(ledger.State{Launch: state, Pool: pool}, cmd, e.now)
	if decision.Rejected() {
		return ledger.Pool{}, e.rejected(cmd, decision.Rejections[0])
	}
	for _, evt := range decision.Events {
		pool = ledger.FoldPool(pool, evt)
	}
	if err := e.commitLocked(ctx, decision.Events, map[address.Key][]byte{
		poolKey: ledger.EncodePool(pool),
	}); err != nil {
		return ledger.Pool{}, err
	}
	e.logger.Info("pool graduated", zap.String("launch", cmd.LaunchID))
	return pool, nil
}

// Pool returns the held pool of a launch without an access check. Callers
// that expose it must apply their own visibility rules.
func (e *Executor) Pool(ctx context.Context, launchKey address.Key) (ledger.Pool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heldPool(ctx, e.deriver.Pool(launchKey))
}

func (e *Executor) command(launchKey address.Key, typ command.Type, actor address.Key, payload any) (command.Command, error) {
	var (
		cmd command.Command
		err error
	)
	if payload == nil {
		cmd = command.Command{LaunchID: launchKey.String(), Type: typ, ActorID: actor.String()}
	} else {
		cmd, err = command.NewPayload(launchKey.String(), typ, actor.String(), payload)
		if err != nil {
			return command.Command{}, apperrors.Wrap(apperrors.CodeInvalidArgument, "encode command", err)
		}
	}
	cmd, err = e.commands.ValidateForDecision(cmd)
	if err != nil {
		return command.Command{}, apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
	}
	return cmd, nil
}

func (e *Executor) heldPool(ctx context.Context, key address.Key) (ledger.Pool, error) {
	env, ok, err := e.currentLocked(ctx, key)
	if err != nil {
		return ledger.Pool{}, err
	}
	if !ok {
		return ledger.Pool{}, apperrors.New(apperrors.CodeNotDelegated, "pool is not delegated to this executor")
	}
	view, err := record.Promote(record.Untrusted[ledger.Pool](env.Data), ledger.DecodePool, ledger.ValidatePool)
	if err != nil {
		return ledger.Pool{}, apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode pool", err)
	}
	pool, _ := view.Value()
	return pool, nil
}

func (e *Executor) heldParticipant(ctx context.Context, key address.Key) (ledger.Participant, error) {
	env, ok, err := e.currentLocked(ctx, key)
	if err != nil {
		return ledger.Participant{}, err
	}
	if !ok {
		return ledger.Participant{}, apperrors.New(apperrors.CodeNotDelegated, "participant is not delegated to this executor")
	}
	participant, err := ledger.DecodeParticipant(env.Data)
	if err != nil {
		return ledger.Participant{}, apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode participant", err)
	}
	return participant, nil
}

// heldCustody reports a custody the executor does not hold as undelegated
// so the decider returns its own rejection.
func (e *Executor) heldCustody(ctx context.Context, key address.Key) (custody.Custody, bool, error) {
	env, ok, err := e.currentLocked(ctx, key)
	if err != nil {
		return custody.Custody{}, false, err
	}
	if !ok {
		return custody.Custody{Key: key}, false, nil
	}
	held, err := custody.Decode(env.Data)
	if err != nil {
		return custody.Custody{}, false, apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode custody", err)
	}
	return held, true, nil
}
