package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
)

// unary builds a method descriptor that decodes Req, runs the interceptor
// chain, and calls call on the registered server.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) gogrpc.MethodDesc {
	return gogrpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: launchv1.FullMethod(service, method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			})
		},
	}
}

// LaunchServer is implemented by *LaunchService.
type LaunchServer interface {
	InitializeLaunch(context.Context, *launchv1.InitializeLaunchRequest) (*launchv1.LaunchResponse, error)
	MarkDelegated(context.Context, *launchv1.LaunchRequest) (*launchv1.Empty, error)
	DelegatePool(context.Context, *launchv1.DelegateRequest) (*launchv1.Empty, error)
	DelegateParticipant(context.Context, *launchv1.DelegateRequest) (*launchv1.Empty, error)
	Deposit(context.Context, *launchv1.AmountRequest) (*launchv1.Empty, error)
	Commit(context.Context, *launchv1.AmountRequest) (*launchv1.ParticipantResponse, error)
	RecordCommit(context.Context, *launchv1.AmountRequest) (*launchv1.Empty, error)
	FundCustody(context.Context, *launchv1.AmountRequest) (*launchv1.CustodyResponse, error)
	PrivateCommit(context.Context, *launchv1.AmountRequest) (*launchv1.Empty, error)
	Graduate(context.Context, *launchv1.LaunchRequest) (*launchv1.LaunchResponse, error)
	GraduateAndUndelegate(context.Context, *launchv1.LaunchRequest) (*launchv1.PoolResponse, error)
	FinalizeGraduation(context.Context, *launchv1.LaunchRequest) (*launchv1.LaunchResponse, error)
	Undelegate(context.Context, *launchv1.UndelegateRequest) (*launchv1.Empty, error)
	SweepToVault(context.Context, *launchv1.UserRequest) (*launchv1.AmountResponse, error)
	ReclaimCustody(context.Context, *launchv1.LaunchRequest) (*launchv1.AmountResponse, error)
	CalculateAllocation(context.Context, *launchv1.UserRequest) (*launchv1.ParticipantResponse, error)
	ClaimTokens(context.Context, *launchv1.LaunchRequest) (*launchv1.AmountResponse, error)
	WithdrawFunds(context.Context, *launchv1.LaunchRequest) (*launchv1.AmountResponse, error)
	Faucet(context.Context, *launchv1.FaucetRequest) (*launchv1.Empty, error)
	GetLaunch(context.Context, *launchv1.LaunchRequest) (*launchv1.LaunchResponse, error)
	GetPool(context.Context, *launchv1.LaunchRequest) (*launchv1.PoolResponse, error)
	GetParticipant(context.Context, *launchv1.UserRequest) (*launchv1.ParticipantResponse, error)
	GetCustody(context.Context, *launchv1.UserRequest) (*launchv1.CustodyResponse, error)
	GetBalance(context.Context, *launchv1.BalanceRequest) (*launchv1.BalanceResponse, error)
	ListEvents(context.Context, *launchv1.ListEventsRequest) (*launchv1.ListEventsResponse, error)
	GetAddresses(context.Context, *launchv1.LaunchKeyRequest) (*launchv1.AddressesResponse, error)
}

// ExecutorServer is implemented by *ExecutorService.
type ExecutorServer interface {
	GetPrivateRecord(context.Context, *launchv1.PrivateRecordRequest) (*launchv1.PrivateRecordResponse, error)
	GetStats(context.Context, *launchv1.Empty) (*launchv1.ExecutorStatsResponse, error)
}

var launchServiceDesc = gogrpc.ServiceDesc{
	ServiceName: launchv1.LaunchServiceName,
	HandlerType: (*LaunchServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(launchv1.LaunchServiceName, "InitializeLaunch", (*LaunchService).InitializeLaunch),
		unary(launchv1.LaunchServiceName, "MarkDelegated", (*LaunchService).MarkDelegated),
		unary(launchv1.LaunchServiceName, "DelegatePool", (*LaunchService).DelegatePool),
		unary(launchv1.LaunchServiceName, "DelegateParticipant", (*LaunchService).DelegateParticipant),
		unary(launchv1.LaunchServiceName, "Deposit", (*LaunchService).Deposit),
		unary(launchv1.LaunchServiceName, "Commit", (*LaunchService).Commit),
		unary(launchv1.LaunchServiceName, "RecordCommit", (*LaunchService).RecordCommit),
		unary(launchv1.LaunchServiceName, "FundCustody", (*LaunchService).FundCustody),
		unary(launchv1.LaunchServiceName, "PrivateCommit", (*LaunchService).PrivateCommit),
		unary(launchv1.LaunchServiceName, "Graduate", (*LaunchService).Graduate),
		unary(launchv1.LaunchServiceName, "GraduateAndUndelegate", (*LaunchService).GraduateAndUndelegate),
		unary(launchv1.LaunchServiceName, "FinalizeGraduation", (*LaunchService).FinalizeGraduation),
		unary(launchv1.LaunchServiceName, "Undelegate", (*LaunchService).Undelegate),
		unary(launchv1.LaunchServiceName, "SweepToVault", (*LaunchService).SweepToVault),
		unary(launchv1.LaunchServiceName, "ReclaimCustody", (*LaunchService).ReclaimCustody),
		unary(launchv1.LaunchServiceName, "CalculateAllocation", (*LaunchService).CalculateAllocation),
		unary(launchv1.LaunchServiceName, "ClaimTokens", (*LaunchService).ClaimTokens),
		unary(launchv1.LaunchServiceName, "WithdrawFunds", (*LaunchService).WithdrawFunds),
		unary(launchv1.LaunchServiceName, "Faucet", (*LaunchService).Faucet),
		unary(launchv1.LaunchServiceName, "GetLaunch", (*LaunchService).GetLaunch),
		unary(launchv1.LaunchServiceName, "GetPool", (*LaunchService).GetPool),
		unary(launchv1.LaunchServiceName, "GetParticipant", (*LaunchService).GetParticipant),
		unary(launchv1.LaunchServiceName, "GetCustody", (*LaunchService).GetCustody),
		unary(launchv1.LaunchServiceName, "GetBalance", (*LaunchService).GetBalance),
		unary(launchv1.LaunchServiceName, "ListEvents", (*LaunchService).ListEvents),
		unary(launchv1.LaunchServiceName, "GetAddresses", (*LaunchService).GetAddresses),
	},
	Metadata: "vestige/launch/v1/launch.json",
}

var executorServiceDesc = gogrpc.ServiceDesc{
	ServiceName: launchv1.ExecutorServiceName,
	HandlerType: (*ExecutorServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unary(launchv1.ExecutorServiceName, "GetPrivateRecord", (*ExecutorService).GetPrivateRecord),
		unary(launchv1.ExecutorServiceName, "GetStats", (*ExecutorService).GetStats),
	},
	Metadata: "vestige/launch/v1/executor.json",
}

// RegisterLaunchService registers svc on s.
func RegisterLaunchService(s gogrpc.ServiceRegistrar, svc *LaunchService) {
	s.RegisterService(&launchServiceDesc, svc)
}

// RegisterExecutorService registers svc on s.
func RegisterExecutorService(s gogrpc.ServiceRegistrar, svc *ExecutorService) {
	s.RegisterService(&executorServiceDesc, svc)
}
