package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	apperrors "github.com/vestige-labs/vestige/internal/platform/errors"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/engine"
	"github.com/vestige-labs/vestige/internal/services/launch/executor"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/memory"
	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

type clients struct {
	launch   *launchv1.LaunchClient
	executor *launchv1.ExecutorClient
}

func startServer(t *testing.T, allowHeader bool) clients {
	t.Helper()
	clock := func() time.Time { return time.Unix(1500, 0) }
	registries := engine.MustBuildRegistries()
	deriver := address.NewDeriver("vestige-test")
	store := memory.New(memory.WithEventRegistry(registries.Events), memory.WithClock(clock))
	exec, err := executor.New(executor.Config{
		Identity:   "exec-1",
		Deriver:    deriver,
		Public:     store,
		Registries: registries,
		Logger:     zaptest.NewLogger(t),
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	svc, err := protocol.New(protocol.Config{
		Store:      store,
		Executor:   exec,
		Deriver:    deriver,
		Registries: registries,
		Faucet:     true,
		Logger:     zaptest.NewLogger(t),
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("new protocol: %v", err)
	}
	launchService, err := NewLaunchService(svc)
	if err != nil {
		t.Fatalf("new launch service: %v", err)
	}
	executorService, err := NewExecutorService(exec)
	if err != nil {
		t.Fatalf("new executor service: %v", err)
	}

	listener := bufconn.Listen(1 << 20)
	auth := ActorAuth{
		Verifier:         walletauth.NewVerifier(func() time.Time { return time.Unix(1500, 0) }),
		AllowActorHeader: allowHeader,
	}
	server := gogrpc.NewServer(gogrpc.ChainUnaryInterceptor(UnaryServerInterceptor(func() (string, error) {
		return "req-1", nil
	}, auth)))
	RegisterLaunchService(server, launchService)
	RegisterExecutorService(server, executorService)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return clients{launch: launchv1.NewLaunchClient(conn), executor: launchv1.NewExecutorClient(conn)}
}

func TestLaunchServiceRoundTrip(t *testing.T) {
	c := startServer(t, true)
	creator := address.FromLabel("creator")
	ctx := launchv1.WithActor(context.Background(), creator.String())

	if _, err := c.launch.Faucet(ctx, &launchv1.FaucetRequest{Wallet: creator, Amount: 100}); err != nil {
		t.Fatalf("faucet: %v", err)
	}
	var header metadata.MD
	resp, err := c.launch.InitializeLaunch(ctx, &launchv1.InitializeLaunchRequest{
		Asset:            assets.Native,
		TokenSupply:      1_000_000,
		StartTime:        1000,
		EndTime:          2000,
		GraduationTarget: 500,
		MinCommitment:    10,
		MaxCommitment:    1000,
	}, gogrpc.Header(&header))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if resp.Launch.Creator != creator || resp.Launch.TokenSupply != 1_000_000 {
		t.Fatalf("launch = %+v", resp.Launch)
	}
	if got := header.Get(launchv1.RequestIDHeader); len(got) != 1 || got[0] != "req-1" {
		t.Fatalf("request id header = %v, want [req-1]", got)
	}

	got, err := c.launch.GetLaunch(context.Background(), &launchv1.LaunchRequest{Launch: resp.Launch.Key})
	if err != nil {
		t.Fatalf("get launch: %v", err)
	}
	if got.Launch.Phase != "open" {
		t.Fatalf("phase = %q, want open", got.Launch.Phase)
	}

	addrs, err := c.launch.GetAddresses(context.Background(), &launchv1.LaunchKeyRequest{Creator: creator, Asset: assets.Native})
	if err != nil {
		t.Fatalf("get addresses: %v", err)
	}
	if addrs.Addresses.Launch != resp.Launch.Key {
		t.Fatalf("launch address = %s, want %s", addrs.Addresses.Launch, resp.Launch.Key)
	}
	supply, err := c.launch.GetBalance(context.Background(), &launchv1.BalanceRequest{
		Account: addrs.Addresses.TokenVault,
		Asset:   addrs.Addresses.Mint,
	})
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if supply.Balance != 1_000_000 {
		t.Fatalf("token vault = %d, want 1000000", supply.Balance)
	}

	events, err := c.launch.ListEvents(context.Background(), &launchv1.ListEventsRequest{Launch: resp.Launch.Key})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events.Events) != 1 || events.Events[0].Type != "launch.initialized" || events.Events[0].RequestID != "req-1" {
		t.Fatalf("events = %+v", events.Events)
	}
}

func TestRejectionsCarryCode(t *testing.T) {
	c := startServer(t, true)
	creator := address.FromLabel("creator")

	_, err := c.launch.MarkDelegated(context.Background(), &launchv1.LaunchRequest{Launch: creator})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("status = %s, want PermissionDenied", status.Code(err))
	}

	ctx := launchv1.WithActor(context.Background(), creator.String())
	_, err = c.launch.InitializeLaunch(ctx, &launchv1.InitializeLaunchRequest{
		TokenSupply:      1,
		StartTime:        10,
		EndTime:          10,
		GraduationTarget: 1,
		MaxCommitment:    1,
	})
	domainErr := apperrors.FromStatus(err)
	if domainErr == nil || domainErr.Code != apperrors.CodeInvalidTimeRange {
		t.Fatalf("error = %v, want %s", err, apperrors.CodeInvalidTimeRange)
	}

	_, err = c.launch.ClaimTokens(launchv1.WithActor(context.Background(), "not-hex"), &launchv1.LaunchRequest{Launch: creator})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("status = %s, want InvalidArgument", status.Code(err))
	}
}

func TestExecutorServiceStats(t *testing.T) {
	c := startServer(t, true)
	stats, err := c.executor.GetStats(context.Background(), &launchv1.Empty{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Identity != "exec-1" || stats.Held != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	_, err = c.executor.GetPrivateRecord(
		launchv1.WithActor(context.Background(), address.FromLabel("alice").String()),
		&launchv1.PrivateRecordRequest{Record: address.FromLabel("missing")},
	)
	if got := apperrors.FromStatus(err); got == nil || got.Code != apperrors.CodeNotFound {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestWalletTokens(t *testing.T) {
	c := startServer(t, false)
	alice := walletauth.FromLabel("alice")
	token, err := alice.Sign(time.Unix(1500, 0), time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	signed := launchv1.WithWalletToken(context.Background(), token)
	if _, err := c.launch.Faucet(signed, &launchv1.FaucetRequest{Wallet: alice.Key, Amount: 100}); err != nil {
		t.Fatalf("faucet: %v", err)
	}
	resp, err := c.launch.InitializeLaunch(signed, &launchv1.InitializeLaunchRequest{
		Asset:            assets.Native,
		TokenSupply:      1000,
		StartTime:        1000,
		EndTime:          2000,
		GraduationTarget: 100,
		MinCommitment:    1,
		MaxCommitment:    100,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if resp.Launch.Creator != alice.Key {
		t.Fatalf("creator = %s, want %s", resp.Launch.Creator, alice.Key)
	}

	unsigned := launchv1.WithActor(context.Background(), alice.Key.String())
	_, err = c.launch.ClaimTokens(unsigned, &launchv1.LaunchRequest{Launch: resp.Launch.Key})
	if got := apperrors.FromStatus(err); got == nil || got.Code != apperrors.CodeUnauthorized {
		t.Fatalf("unsigned header error = %v, want UNAUTHORIZED", err)
	}

	expired, err := alice.Sign(time.Unix(100, 0), time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = c.launch.ClaimTokens(launchv1.WithWalletToken(context.Background(), expired), &launchv1.LaunchRequest{Launch: resp.Launch.Key})
	if got := apperrors.FromStatus(err); got == nil || got.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expired token error = %v, want UNAUTHORIZED", err)
	}
}
