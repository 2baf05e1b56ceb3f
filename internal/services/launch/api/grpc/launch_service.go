package grpc

import (
	"context"
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
)

// LaunchService implements vestige.launch.v1.LaunchService.
type LaunchService struct {
	svc *protocol.Service
}

// NewLaunchService wraps svc.
func NewLaunchService(svc *protocol.Service) (*LaunchService, error) {
	if svc == nil {
		return nil, errors.New("protocol service is required")
	}
	return &LaunchService{svc: svc}, nil
}

func (s *LaunchService) InitializeLaunch(ctx context.Context, in *launchv1.InitializeLaunchRequest) (*launchv1.LaunchResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	state, err := s.svc.InitializeLaunch(ctx, actor, protocol.LaunchParams{
		Asset:            in.Asset,
		TokenSupply:      in.TokenSupply,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		GraduationTarget: in.GraduationTarget,
		MinCommitment:    in.MinCommitment,
		MaxCommitment:    in.MaxCommitment,
	})
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.LaunchResponse{Launch: launchv1.LaunchFromState(state, "")}, nil
}

func (s *LaunchService) MarkDelegated(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.MarkDelegated(ctx, actor, in.Launch); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) DelegatePool(ctx context.Context, in *launchv1.DelegateRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.DelegatePool(ctx, actor, in.Launch, in.Executor); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) DelegateParticipant(ctx context.Context, in *launchv1.DelegateRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.DelegateParticipant(ctx, actor, in.Launch, in.Executor); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) Deposit(ctx context.Context, in *launchv1.AmountRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.Deposit(ctx, actor, in.Launch, in.Amount); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) Commit(ctx context.Context, in *launchv1.AmountRequest) (*launchv1.ParticipantResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	participant, err := s.svc.Commit(ctx, actor, in.Launch, in.Amount)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.ParticipantResponse{Participant: launchv1.ParticipantFromState(participant)}, nil
}

func (s *LaunchService) RecordCommit(ctx context.Context, in *launchv1.AmountRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.RecordCommit(ctx, actor, in.Launch, in.Amount); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) FundCustody(ctx context.Context, in *launchv1.AmountRequest) (*launchv1.CustodyResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	held, err := s.svc.FundCustody(ctx, actor, in.Launch, in.Amount)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.CustodyResponse{Custody: launchv1.CustodyFromState(held)}, nil
}

func (s *LaunchService) PrivateCommit(ctx context.Context, in *launchv1.AmountRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.PrivateCommit(ctx, actor, in.Launch, in.Amount); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) Graduate(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.LaunchResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	state, err := s.svc.Graduate(ctx, actor, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.LaunchResponse{Launch: launchv1.LaunchFromState(state, "")}, nil
}

func (s *LaunchService) GraduateAndUndelegate(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.PoolResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	pool, err := s.svc.GraduateAndUndelegate(ctx, actor, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.PoolResponse{Pool: launchv1.Pool{
		Ownership: launchv1.Ownership{Key: pool.Key, Owner: string(record.OwnerProtocol)},
		Totals:    launchv1.PoolTotalsFromPool(pool),
	}}, nil
}

func (s *LaunchService) FinalizeGraduation(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.LaunchResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	state, err := s.svc.FinalizeGraduation(ctx, actor, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.LaunchResponse{Launch: launchv1.LaunchFromState(state, "")}, nil
}

func (s *LaunchService) Undelegate(ctx context.Context, in *launchv1.UndelegateRequest) (*launchv1.Empty, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	if err := s.svc.Undelegate(ctx, actor, in.Launch, in.Record); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) SweepToVault(ctx context.Context, in *launchv1.UserRequest) (*launchv1.AmountResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	swept, err := s.svc.SweepToVault(ctx, actor, in.Launch, in.User)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.AmountResponse{Amount: swept}, nil
}

func (s *LaunchService) ReclaimCustody(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.AmountResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	reclaimed, err := s.svc.ReclaimCustody(ctx, actor, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.AmountResponse{Amount: reclaimed}, nil
}

func (s *LaunchService) CalculateAllocation(ctx context.Context, in *launchv1.UserRequest) (*launchv1.ParticipantResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	participant, err := s.svc.CalculateAllocation(ctx, actor, in.Launch, in.User)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.ParticipantResponse{Participant: launchv1.ParticipantFromState(participant)}, nil
}

func (s *LaunchService) ClaimTokens(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.AmountResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	claimed, err := s.svc.ClaimTokens(ctx, actor, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.AmountResponse{Amount: claimed}, nil
}

func (s *LaunchService) WithdrawFunds(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.AmountResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, handleError(err)
	}
	withdrawn, err := s.svc.WithdrawFunds(ctx, actor, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.AmountResponse{Amount: withdrawn}, nil
}

func (s *LaunchService) Faucet(ctx context.Context, in *launchv1.FaucetRequest) (*launchv1.Empty, error) {
	if err := s.svc.Faucet(ctx, in.Wallet, in.Amount); err != nil {
		return nil, handleError(err)
	}
	return &launchv1.Empty{}, nil
}

func (s *LaunchService) GetLaunch(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.LaunchResponse, error) {
	state, phase, err := s.svc.Launch(ctx, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.LaunchResponse{Launch: launchv1.LaunchFromState(state, phase)}, nil
}

func (s *LaunchService) GetPool(ctx context.Context, in *launchv1.LaunchRequest) (*launchv1.PoolResponse, error) {
	view, err := s.svc.Pool(ctx, in.Launch)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.PoolResponse{Pool: launchv1.PoolFromView(view)}, nil
}

func (s *LaunchService) GetParticipant(ctx context.Context, in *launchv1.UserRequest) (*launchv1.ParticipantResponse, error) {
	view, err := s.svc.Participant(ctx, in.Launch, in.User)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.ParticipantResponse{Participant: launchv1.ParticipantFromView(view)}, nil
}

func (s *LaunchService) GetCustody(ctx context.Context, in *launchv1.UserRequest) (*launchv1.CustodyResponse, error) {
	view, err := s.svc.Custody(ctx, in.Launch, in.User)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.CustodyResponse{Custody: launchv1.CustodyFromView(view)}, nil
}

func (s *LaunchService) GetBalance(ctx context.Context, in *launchv1.BalanceRequest) (*launchv1.BalanceResponse, error) {
	balance, err := s.svc.Balance(ctx, in.Account, in.Asset)
	if err != nil {
		return nil, handleError(err)
	}
	return &launchv1.BalanceResponse{Balance: balance}, nil
}

func (s *LaunchService) ListEvents(ctx context.Context, in *launchv1.ListEventsRequest) (*launchv1.ListEventsResponse, error) {
	events, err := s.svc.Events(ctx, in.Launch, in.AfterSeq, in.Limit)
	if err != nil {
		return nil, handleError(err)
	}
	out := make([]launchv1.Event, 0, len(events))
	for _, evt := range events {
		out = append(out, launchv1.EventFromJournal(evt))
	}
	return &launchv1.ListEventsResponse{Events: out}, nil
}

func (s *LaunchService) GetAddresses(_ context.Context, in *launchv1.LaunchKeyRequest) (*launchv1.AddressesResponse, error) {
	launchKey := s.svc.LaunchKey(in.Creator, in.Asset)
	return &launchv1.AddressesResponse{Addresses: launchv1.AddressesFrom(s.svc.Addresses(launchKey))}, nil
}
