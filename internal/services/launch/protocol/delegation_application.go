package protocol

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/delegation"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/executor"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// handoff names a record and who controls it.
type handoff struct {
	key        address.Key
	kind       address.Kind
	controller address.Key
	seeds      [][]byte
	members    []address.Key
}

// DelegatePool hands the launch's pool to the private executor. Only the
// creator may do it. pin, when set, names the executor that must accept.
func (s *Service) DelegatePool(ctx context.Context, actor, launchKey address.Key, pin string) (err error) {
	ctx, span := s.startSpan(ctx, "DelegatePool")
	defer func() { err = s.finish(span, err) }()

	if err := s.requireExecutor(); err != nil {
		return err
	}
	state, err := requireLaunch(ctx, s.store, launchKey)
	if err != nil {
		return err
	}
	return s.delegate(ctx, actor, launchKey, pin, []handoff{{
		key:        s.deriver.Pool(launchKey),
		kind:       address.KindPool,
		controller: state.Creator,
		seeds:      s.deriver.Seeds(address.KindPool, launchKey, nil),
		members:    []address.Key{state.Creator},
	}}, nil)
}

// DelegateParticipant hands actor's participant and custody records to the
// private executor, creating empty ones first when they do not exist.
func (s *Service) DelegateParticipant(ctx context.Context, actor, launchKey address.Key, pin string) (err error) {
	ctx, span := s.startSpan(ctx, "DelegateParticipant")
	defer func() { err = s.finish(span, err) }()

	if err := s.requireExecutor(); err != nil {
		return err
	}
	participantKey := s.deriver.Participant(launchKey, actor)
	custodyKey := s.deriver.Custody(launchKey, actor)
	create := func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.GetRecord(ctx, participantKey); errors.Is(err, storage.ErrNotFound) {
			empty := ledger.Participant{Key: participantKey, Launch: launchKey, User: actor}
			if err := putPublic(ctx, tx, participantKey, address.KindParticipant, ledger.EncodeParticipant(empty)); err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("read participant: %w", err)
		}
		if _, err := tx.GetRecord(ctx, custodyKey); errors.Is(err, storage.ErrNotFound) {
			empty := custody.Custody{Key: custodyKey, Launch: launchKey, User: actor}
			if err := putPublic(ctx, tx, custodyKey, address.KindCustody, custody.Encode(empty)); err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("read custody: %w", err)
		}
		return nil
	}
	return s.delegate(ctx, actor, launchKey, pin, []handoff{
		{
			key:        participantKey,
			kind:       address.KindParticipant,
			controller: actor,
			seeds:      s.deriver.Seeds(address.KindParticipant, launchKey, &actor),
			members:    []address.Key{actor},
		},
		{
			key:        custodyKey,
			kind:       address.KindCustody,
			controller: actor,
			seeds:      s.deriver.Seeds(address.KindCustody, launchKey, &actor),
			members:    []address.Key{actor},
		},
	}, create)
}

// delegate flips the owner tags of records and hands their bytes to the
// executor in one public transaction. If the transaction fails after the
// executor accepted, the executor is asked to give the records back.
func (s *Service) delegate(ctx context.Context, actor, launchKey address.Key, pin string, records []handoff, prepare func(context.Context, storage.Tx) error) error {
	var accepted []address.Key
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		state, err := requireLaunch(ctx, tx, launchKey)
		if err != nil {
			return err
		}
		if prepare != nil {
			if err := prepare(ctx, tx); err != nil {
				return err
			}
		}
		delegations := make([]executor.Delegation, 0, len(records))
		for _, h := range records {
			env, err := tx.GetRecord(ctx, h.key)
			if err != nil {
				return fmt.Errorf("read %s: %w", address.Describe(h.kind, h.key), err)
			}
			cmd, err := s.command(ctx, launchKey, delegation.CommandTypeDelegate, actor, delegation.RecordPayload{
				Record:     h.key,
				ExecutorID: s.executor.Identity(),
			})
			if err != nil {
				return err
			}
			decision := delegation.Decide(delegation.State{Launch: state, Record: env, Controller: h.controller}, cmd, s.now)
			if decision.Rejected() {
				return s.rejected(cmd, decision)
			}
			delegated := env
			for _, evt := range decision.Events {
				delegated = delegation.Fold(delegated, evt)
			}
			if err := tx.PutRecord(ctx, delegated); err != nil {
				return fmt.Errorf("write %s: %w", address.Describe(h.kind, h.key), err)
			}
			if _, err := tx.AppendEvents(ctx, decision.Events...); err != nil {
				return err
			}
			delegations = append(delegations, executor.Delegation{Record: env, Seeds: h.seeds, Pin: pin, Members: h.members})
		}
		for _, d := range delegations {
			if err := s.executor.Accept(ctx, d); err != nil {
				return err
			}
			accepted = append(accepted, d.Record.Key)
		}
		return nil
	})
	if err != nil {
		s.recall(ctx, accepted)
		return err
	}
	for _, h := range records {
		s.logger.Info("record delegated",
			zap.String("launch", launchKey.String()),
			zap.String("record", address.Describe(h.kind, h.key)),
			zap.String("executor", s.executor.Identity()),
		)
	}
	return nil
}

// recall takes back records the executor accepted inside a transaction that
// later failed.
func (s *Service) recall(ctx context.Context, keys []address.Key) {
	if len(keys) == 0 {
		return
	}
	if _, err := s.executor.Snapshot(ctx, keys...); err != nil {
		s.logger.Warn("recall snapshot failed", zap.Error(err))
		return
	}
	if err := s.executor.Release(ctx, keys...); err != nil {
		s.logger.Warn("recall release failed", zap.Error(err))
	}
}

// GraduateAndUndelegate graduates the delegated pool inside the executor
// and hands it back to the protocol. A pool that graduated earlier but was
// not fully handed back is handed back again.
func (s *Service) GraduateAndUndelegate(ctx context.Context, actor, launchKey address.Key) (pool ledger.Pool, err error) {
	ctx, span := s.startSpan(ctx, "GraduateAndUndelegate")
	defer func() { err = s.finish(span, err) }()

	if err := s.requireExecutor(); err != nil {
		return ledger.Pool{}, err
	}
	state, err := requireLaunch(ctx, s.store, launchKey)
	if err != nil {
		return ledger.Pool{}, err
	}
	poolKey := s.deriver.Pool(launchKey)
	if _, err := s.executor.GraduatePool(ctx, launchKey, actor); err != nil {
		// A pool frozen by an interrupted hand-back reports not delegated.
		code := apperrors.GetCode(err)
		if code != apperrors.CodeAlreadyGraduated && code != apperrors.CodeNotDelegated {
			return ledger.Pool{}, err
		}
		env, readErr := s.store.GetRecord(ctx, poolKey)
		if readErr != nil {
			return ledger.Pool{}, fmt.Errorf("read pool: %w", readErr)
		}
		if env.Owner == record.OwnerProtocol {
			return ledger.Pool{}, err
		}
	}
	if err := s.handBack(ctx, actor, state, true, []handoff{{key: poolKey, kind: address.KindPool, controller: state.Creator}}); err != nil {
		return ledger.Pool{}, err
	}
	env, err := s.store.GetRecord(ctx, poolKey)
	if err != nil {
		return ledger.Pool{}, fmt.Errorf("read pool: %w", err)
	}
	return trustedPool(env.Data)
}

// Undelegate hands a participant, custody, or pool record back to the
// protocol. Before the launch's pool has graduated only the record's
// controller may do it; afterwards anyone may.
func (s *Service) Undelegate(ctx context.Context, actor, launchKey, recordKey address.Key) (err error) {
	ctx, span := s.startSpan(ctx, "Undelegate")
	defer func() { err = s.finish(span, err) }()

	state, err := requireLaunch(ctx, s.store, launchKey)
	if err != nil {
		return err
	}
	env, err := s.store.GetRecord(ctx, recordKey)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	h := handoff{key: recordKey, kind: env.Kind}
	switch env.Kind {
	case address.KindPool:
		if recordKey != s.deriver.Pool(launchKey) {
			return apperrors.New(apperrors.CodeInvalidArgument, "pool belongs to another launch")
		}
		h.controller = state.Creator
	case address.KindParticipant:
		participant, err := ledger.DecodeParticipant(env.Data)
		if err != nil {
			return fmt.Errorf("decode participant: %w", err)
		}
		if participant.Launch != launchKey {
			return apperrors.New(apperrors.CodeInvalidArgument, "participant belongs to another launch")
		}
		h.controller = participant.User
	case address.KindCustody:
		held, err := custody.Decode(env.Data)
		if err != nil {
			return fmt.Errorf("decode custody: %w", err)
		}
		if held.Launch != launchKey {
			return apperrors.New(apperrors.CodeInvalidArgument, "custody belongs to another launch")
		}
		h.controller = held.User
	default:
		return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("%s records are never delegated", env.Kind))
	}
	if env.Owner != record.OwnerExecutor && env.Owner != record.OwnerInTransit {
		return apperrors.New(apperrors.CodeNotDelegated, "record is not delegated")
	}
	if env.Owner == record.OwnerExecutor {
		if err := s.requireExecutor(); err != nil {
			return err
		}
	}

	released := state.IsGraduated
	if !released {
		poolEnv, err := s.store.GetRecord(ctx, s.deriver.Pool(launchKey))
		if err != nil {
			return fmt.Errorf("read pool: %w", err)
		}
		if poolEnv.Owner == record.OwnerProtocol {
			if pool, err := trustedPool(poolEnv.Data); err == nil && pool.Graduated {
				released = true
			}
		}
	}
	return s.handBack(ctx, actor, state, released, []handoff{h})
}

// handBack runs snapshot -> publish -> release -> settle for records. A
// record already in transit skips straight to settle, so an interrupted
// hand-back can be resumed by calling it again.
func (s *Service) handBack(ctx context.Context, actor address.Key, state launch.State, released bool, records []handoff) error {
	launchKey := state.Key
	var held []handoff
	for _, h := range records {
		env, err := s.store.GetRecord(ctx, h.key)
		if err != nil {
			return fmt.Errorf("read %s: %w", address.Describe(h.kind, h.key), err)
		}
		if env.Owner != record.OwnerExecutor {
			continue
		}
		// Check authorization before the executor freezes anything.
		cmd, err := s.command(ctx, launchKey, delegation.CommandTypePublish, actor, delegation.RecordPayload{Record: h.key})
		if err != nil {
			return err
		}
		decision := delegation.Decide(delegation.State{Launch: state, Record: env, Controller: h.controller, Released: released}, cmd, s.now)
		if decision.Rejected() {
			return s.rejected(cmd, decision)
		}
		held = append(held, h)
	}

	if len(held) > 0 {
		keys := make([]address.Key, 0, len(held))
		for _, h := range held {
			keys = append(keys, h.key)
		}
		snapshots, err := s.executor.Snapshot(ctx, keys...)
		if err != nil {
			return err
		}
		err = s.store.Update(ctx, func(tx storage.Tx) error {
			for i, snap := range snapshots {
				h := held[i]
				env, err := tx.GetRecord(ctx, h.key)
				if err != nil {
					return fmt.Errorf("read %s: %w", address.Describe(h.kind, h.key), err)
				}
				cmd, err := s.command(ctx, launchKey, delegation.CommandTypePublish, actor, delegation.RecordPayload{Record: h.key})
				if err != nil {
					return err
				}
				decision := delegation.Decide(delegation.State{Launch: state, Record: env, Controller: h.controller, Released: released}, cmd, s.now)
				if decision.Rejected() {
					return s.rejected(cmd, decision)
				}
				for _, evt := range decision.Events {
					env = delegation.Fold(env, evt)
				}
				env.Data = snap.Data
				if err := tx.PutRecord(ctx, env); err != nil {
					return fmt.Errorf("publish %s: %w", address.Describe(h.kind, h.key), err)
				}
				if _, err := tx.AppendEvents(ctx, decision.Events...); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := s.executor.Release(ctx, keys...); err != nil {
			return err
		}
	}

	var settled []handoff
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		settled = settled[:0]
		for _, h := range records {
			env, err := tx.GetRecord(ctx, h.key)
			if err != nil {
				return fmt.Errorf("read %s: %w", address.Describe(h.kind, h.key), err)
			}
			if env.Owner != record.OwnerInTransit {
				continue
			}
			cmd, err := s.command(ctx, launchKey, delegation.CommandTypeSettle, actor, delegation.RecordPayload{Record: h.key})
			if err != nil {
				return err
			}
			decision := delegation.Decide(delegation.State{Launch: state, Record: env, Controller: h.controller, Released: released}, cmd, s.now)
			if decision.Rejected() {
				return s.rejected(cmd, decision)
			}
			for _, evt := range decision.Events {
				env = delegation.Fold(env, evt)
			}
			if err := tx.PutRecord(ctx, env); err != nil {
				return fmt.Errorf("settle %s: %w", address.Describe(h.kind, h.key), err)
			}
			if _, err := tx.AppendEvents(ctx, decision.Events...); err != nil {
				return err
			}
			settled = append(settled, h)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, h := range settled {
		s.logger.Info("record undelegated",
			zap.String("launch", launchKey.String()),
			zap.String("record", address.Describe(h.kind, h.key)),
		)
	}
	return nil
}
