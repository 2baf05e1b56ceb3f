package grpc

import (
	"context"
	"errors"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/executor"
)

// PrivateVenue is the part of the executor its service exposes.
type PrivateVenue interface {
	Identity() string
	View(ctx context.Context, key, viewer address.Key) (record.Envelope, error)
	Stats() executor.Stats
}

// ExecutorService implements vestige.launch.v1.ExecutorService.
type ExecutorService struct {
	venue PrivateVenue
}

// NewExecutorService wraps venue.
func NewExecutorService(venue PrivateVenue) (*ExecutorService, error) {
	if venue == nil {
		return nil, errors.New("executor is required")
	}
	return &ExecutorService{venue: venue}, nil
}

// GetPrivateRecord reads a delegated record as the calling actor, who must
// be a member of the record's permission.
func (s *ExecutorService) GetPrivateRecord(ctx context.Context, in *launchv1.PrivateRecordRequest) (*launchv1.PrivateRecordResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	env, err := s.venue.View(ctx, in.Record, actor)
	if err != nil {
		return nil, handleError(err)
	}
	out := &launchv1.PrivateRecordResponse{
		Ownership: launchv1.Ownership{Key: env.Key, Owner: string(env.Owner), ExecutorID: env.ExecutorID},
		Kind:      string(env.Kind),
	}
	switch env.Kind {
	case address.KindPool:
		pool, err := ledger.DecodePool(env.Data)
		if err != nil {
			return nil, handleError(apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode pool", err))
		}
		out.Pool = launchv1.PoolTotalsFromPool(pool)
	case address.KindParticipant:
		participant, err := ledger.DecodeParticipant(env.Data)
		if err != nil {
			return nil, handleError(apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode participant", err))
		}
		out.Participant = launchv1.CommitmentFromParticipant(participant)
	case address.KindCustody:
		held, err := custody.Decode(env.Data)
		if err != nil {
			return nil, handleError(apperrors.Wrap(apperrors.CodeInvalidAccountData, "decode custody", err))
		}
		out.Custody = &held.Balance
	}
	return out, nil
}

// GetStats reports the executor's counters.
func (s *ExecutorService) GetStats(context.Context, *launchv1.Empty) (*launchv1.ExecutorStatsResponse, error) {
	stats := s.venue.Stats()
	return &launchv1.ExecutorStatsResponse{
		Identity:      s.venue.Identity(),
		Held:          stats.Held,
		Delegations:   stats.Delegations,
		Undelegations: stats.Undelegations,
		Commits:       stats.Commits,
		Rejections:    stats.Rejections,
	}, nil
}
