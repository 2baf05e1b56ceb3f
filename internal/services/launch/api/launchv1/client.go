package launchv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	LaunchServiceName   = "vestige.launch.v1.LaunchService"
	ExecutorServiceName = "vestige.launch.v1.ExecutorService"
)

// ActorHeader carries the hex key of the calling wallet, unsigned. Servers
// accept it only in development mode.
const ActorHeader = "x-vestige-actor"

// AuthorizationHeader carries "Bearer <wallet token>".
const AuthorizationHeader = "authorization"

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "x-vestige-request-id"

// WithActor attaches the calling wallet to outgoing metadata.
func WithActor(ctx context.Context, actor string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ActorHeader, actor)
}

// WithWalletToken attaches a signed wallet token to outgoing metadata.
func WithWalletToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, AuthorizationHeader, "Bearer "+token)
}

// FullMethod returns the gRPC method path of a launch service method.
func FullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// LaunchClient calls LaunchService.
type LaunchClient struct {
	cc grpc.ClientConnInterface
}

// NewLaunchClient returns a LaunchClient over cc.
func NewLaunchClient(cc grpc.ClientConnInterface) *LaunchClient {
	return &LaunchClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(service, method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LaunchClient) InitializeLaunch(ctx context.Context, in *InitializeLaunchRequest, opts ...grpc.CallOption) (*LaunchResponse, error) {
	return invoke[LaunchResponse](ctx, c.cc, LaunchServiceName, "InitializeLaunch", in, opts)
}

func (c *LaunchClient) MarkDelegated(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "MarkDelegated", in, opts)
}

func (c *LaunchClient) DelegatePool(ctx context.Context, in *DelegateRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "DelegatePool", in, opts)
}

func (c *LaunchClient) DelegateParticipant(ctx context.Context, in *DelegateRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "DelegateParticipant", in, opts)
}

func (c *LaunchClient) Deposit(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "Deposit", in, opts)
}

func (c *LaunchClient) Commit(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*ParticipantResponse, error) {
	return invoke[ParticipantResponse](ctx, c.cc, LaunchServiceName, "Commit", in, opts)
}

func (c *LaunchClient) RecordCommit(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "RecordCommit", in, opts)
}

func (c *LaunchClient) FundCustody(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*CustodyResponse, error) {
	return invoke[CustodyResponse](ctx, c.cc, LaunchServiceName, "FundCustody", in, opts)
}

func (c *LaunchClient) PrivateCommit(ctx context.Context, in *AmountRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "PrivateCommit", in, opts)
}

func (c *LaunchClient) Graduate(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*LaunchResponse, error) {
	return invoke[LaunchResponse](ctx, c.cc, LaunchServiceName, "Graduate", in, opts)
}

func (c *LaunchClient) GraduateAndUndelegate(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*PoolResponse, error) {
	return invoke[PoolResponse](ctx, c.cc, LaunchServiceName, "GraduateAndUndelegate", in, opts)
}

func (c *LaunchClient) FinalizeGraduation(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*LaunchResponse, error) {
	return invoke[LaunchResponse](ctx, c.cc, LaunchServiceName, "FinalizeGraduation", in, opts)
}

func (c *LaunchClient) Undelegate(ctx context.Context, in *UndelegateRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "Undelegate", in, opts)
}

func (c *LaunchClient) SweepToVault(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, c.cc, LaunchServiceName, "SweepToVault", in, opts)
}

func (c *LaunchClient) ReclaimCustody(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, c.cc, LaunchServiceName, "ReclaimCustody", in, opts)
}

func (c *LaunchClient) CalculateAllocation(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ParticipantResponse, error) {
	return invoke[ParticipantResponse](ctx, c.cc, LaunchServiceName, "CalculateAllocation", in, opts)
}

func (c *LaunchClient) ClaimTokens(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, c.cc, LaunchServiceName, "ClaimTokens", in, opts)
}

func (c *LaunchClient) WithdrawFunds(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, c.cc, LaunchServiceName, "WithdrawFunds", in, opts)
}

func (c *LaunchClient) Faucet(ctx context.Context, in *FaucetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, LaunchServiceName, "Faucet", in, opts)
}

func (c *LaunchClient) GetLaunch(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*LaunchResponse, error) {
	return invoke[LaunchResponse](ctx, c.cc, LaunchServiceName, "GetLaunch", in, opts)
}

func (c *LaunchClient) GetPool(ctx context.Context, in *LaunchRequest, opts ...grpc.CallOption) (*PoolResponse, error) {
	return invoke[PoolResponse](ctx, c.cc, LaunchServiceName, "GetPool", in, opts)
}

func (c *LaunchClient) GetParticipant(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ParticipantResponse, error) {
	return invoke[ParticipantResponse](ctx, c.cc, LaunchServiceName, "GetParticipant", in, opts)
}

func (c *LaunchClient) GetCustody(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*CustodyResponse, error) {
	return invoke[CustodyResponse](ctx, c.cc, LaunchServiceName, "GetCustody", in, opts)
}

func (c *LaunchClient) GetBalance(ctx context.Context, in *BalanceRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c.cc, LaunchServiceName, "GetBalance", in, opts)
}

func (c *LaunchClient) ListEvents(ctx context.Context, in *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsResponse, error) {
	return invoke[ListEventsResponse](ctx, c.cc, LaunchServiceName, "ListEvents", in, opts)
}

func (c *LaunchClient) GetAddresses(ctx context.Context, in *LaunchKeyRequest, opts ...grpc.CallOption) (*AddressesResponse, error) {
	return invoke[AddressesResponse](ctx, c.cc, LaunchServiceName, "GetAddresses", in, opts)
}

// ExecutorClient calls ExecutorService.
type ExecutorClient struct {
	cc grpc.ClientConnInterface
}

// NewExecutorClient returns an ExecutorClient over cc.
func NewExecutorClient(cc grpc.ClientConnInterface) *ExecutorClient {
	return &ExecutorClient{cc: cc}
}

func (c *ExecutorClient) GetPrivateRecord(ctx context.Context, in *PrivateRecordRequest, opts ...grpc.CallOption) (*PrivateRecordResponse, error) {
	return invoke[PrivateRecordResponse](ctx, c.cc, ExecutorServiceName, "GetPrivateRecord", in, opts)
}

func (c *ExecutorClient) GetStats(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ExecutorStatsResponse, error) {
	return invoke[ExecutorStatsResponse](ctx, c.cc, ExecutorServiceName, "GetStats", in, opts)
}
