package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

// Recover rebuilds the held set from the private store.
//
// A private record whose public copy is still tagged for this executor is
// held again, with its viewers restored. A private record the public ledger
// already reclaimed, either through a published hand-back or a delegation
// that never committed, is dropped. Any public record tagged for this
// executor without a private copy fails the recovery.
func (e *Executor) Recover(ctx context.Context) error {
	private, err := e.store.ListRecords(ctx, record.OwnerExecutor)
	if err != nil {
		return fmt.Errorf("list private records: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var restored, dropped int
	for _, env := range private {
		if _, ok := e.live[env.Key]; ok {
			continue
		}
		name := address.Describe(env.Kind, env.Key)
		public, err := e.public.GetRecord(ctx, env.Key)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("recover %s: no public record", name)
		}
		if err != nil {
			return fmt.Errorf("recover %s: %w", name, err)
		}
		switch {
		case public.Owner == record.OwnerExecutor && public.ExecutorID == e.identity:
			members, err := e.membersLocked(ctx, env)
			if err != nil {
				return fmt.Errorf("recover %s: %w", name, err)
			}
			e.live[env.Key] = &liveRecord{kind: env.Kind}
			e.access.CreatePermission(env.Key, members)
			restored++
		case public.Owner == record.OwnerExecutor:
			return fmt.Errorf("recover %s: delegated to executor %q", name, public.ExecutorID)
		default:
			if err := e.store.DeleteRecord(ctx, env.Key); err != nil {
				return fmt.Errorf("recover %s: drop private copy: %w", name, err)
			}
			dropped++
		}
	}

	tagged, err := e.public.ListRecords(ctx, record.OwnerExecutor)
	if err != nil {
		return fmt.Errorf("list delegated public records: %w", err)
	}
	var missing []string
	for _, env := range tagged {
		if env.ExecutorID != e.identity {
			continue
		}
		if _, ok := e.live[env.Key]; !ok {
			missing = append(missing, address.Describe(env.Kind, env.Key))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("executor %q holds no private state for %d delegated records: %s",
			e.identity, len(missing), strings.Join(missing, ", "))
	}

	e.logger.Info("executor recovered", zap.Int("held", restored), zap.Int("dropped", dropped))
	return nil
}

// membersLocked returns the viewers a delegation of env was granted.
func (e *Executor) membersLocked(ctx context.Context, env record.Envelope) ([]address.Key, error) {
	switch env.Kind {
	case address.KindPool:
		pool, err := ledger.DecodePool(env.Data)
		if err != nil {
			return nil, fmt.Errorf("decode pool: %w", err)
		}
		state, err := e.loadLaunch(ctx, pool.Launch)
		if err != nil {
			return nil, err
		}
		return []address.Key{state.Creator}, nil
	case address.KindParticipant:
		participant, err := ledger.DecodeParticipant(env.Data)
		if err != nil {
			return nil, fmt.Errorf("decode participant: %w", err)
		}
		return []address.Key{participant.User}, nil
	case address.KindCustody:
		held, err := custody.Decode(env.Data)
		if err != nil {
			return nil, fmt.Errorf("decode custody: %w", err)
		}
		return []address.Key{held.User}, nil
	default:
		return nil, fmt.Errorf("kind %q is never delegated", env.Kind)
	}
}
