package app

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	platformgrpc "github.com/vestige-labs/vestige/internal/platform/grpc"
	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

func testKeyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	keyring, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("test-secret")}, "v1")
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	return keyring
}

func testConfig(t *testing.T) Config {
	return Config{
		GRPCAddr:         "127.0.0.1:0",
		ExplorerAddr:     "127.0.0.1:0",
		MaxExplorerConns: 4,
		DBPath:           filepath.Join(t.TempDir(), "ledger", "launch.db"),
		ProgramID:        "vestige-test",
		ExecutorIdentity: "exec-1",
		Faucet:           true,
		Keyring:          testKeyring(t),
		Logger:           zaptest.NewLogger(t),
		Clock:            func() time.Time { return time.Unix(1500, 0) },
	}
}

func TestBuildRequiresProgramID(t *testing.T) {
	cfg := testConfig(t)
	cfg.ProgramID = " "
	if _, err := build(cfg); err == nil {
		t.Fatal("expected error for missing program id")
	}
}

func TestBuildRequiresKeyringForSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Keyring = nil
	if _, err := build(cfg); err == nil {
		t.Fatal("expected error for missing keyring")
	}
}

func TestServeLaunchAPIAndExplorer(t *testing.T) {
	server, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	conn, err := platformgrpc.Dial(ctx, server.Addr(), launchv1.LaunchServiceName, 2*time.Second, zaptest.NewLogger(t))
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	client := launchv1.NewLaunchClient(conn)
	creator := walletauth.FromLabel("creator")
	token, err := creator.Sign(time.Unix(1500, 0), time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	callCtx := launchv1.WithWalletToken(ctx, token)
	if _, err := client.Faucet(callCtx, &launchv1.FaucetRequest{Wallet: creator.Key, Amount: 10}); err != nil {
		t.Fatalf("faucet: %v", err)
	}
	resp, err := client.InitializeLaunch(callCtx, &launchv1.InitializeLaunchRequest{
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

	httpResp, err := http.Get("http://" + server.ExplorerAddr() + "/launches/" + resp.Launch.Key.String())
	if err != nil {
		t.Fatalf("explorer get: %v", err)
	}
	var view launchv1.Launch
	err = json.NewDecoder(httpResp.Body).Decode(&view)
	_ = httpResp.Body.Close()
	if err != nil {
		t.Fatalf("decode launch: %v", err)
	}
	if view.Key != resp.Launch.Key || view.TokenSupply != 1000 {
		t.Fatalf("explorer launch = %+v", view)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestBuildRecoversDelegatedRecordsAfterRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	parts, err := build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	creator := address.FromLabel("creator")
	alice := address.FromLabel("alice")
	for _, wallet := range []address.Key{creator, alice} {
		if err := parts.protocol.Faucet(ctx, wallet, 1000); err != nil {
			t.Fatalf("faucet: %v", err)
		}
	}
	state, err := parts.protocol.InitializeLaunch(ctx, creator, protocol.LaunchParams{
		Asset:            assets.Native,
		TokenSupply:      1000,
		StartTime:        1000,
		EndTime:          2000,
		GraduationTarget: 300,
		MinCommitment:    1,
		MaxCommitment:    500,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := parts.protocol.FundCustody(ctx, alice, state.Key, 300); err != nil {
		t.Fatalf("fund custody: %v", err)
	}
	if err := parts.protocol.DelegateParticipant(ctx, alice, state.Key, ""); err != nil {
		t.Fatalf("delegate participant: %v", err)
	}
	if err := parts.protocol.DelegatePool(ctx, creator, state.Key, ""); err != nil {
		t.Fatalf("delegate pool: %v", err)
	}
	if err := parts.protocol.MarkDelegated(ctx, creator, state.Key); err != nil {
		t.Fatalf("mark delegated: %v", err)
	}
	if err := parts.protocol.PrivateCommit(ctx, alice, state.Key, 300); err != nil {
		t.Fatalf("private commit: %v", err)
	}
	if err := parts.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	restarted, err := build(cfg)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if held := restarted.executor.Stats().Held; held != 3 {
		t.Fatalf("held after restart = %d, want 3", held)
	}
	pool, err := restarted.protocol.GraduateAndUndelegate(ctx, alice, state.Key)
	if err != nil {
		t.Fatalf("graduate and undelegate: %v", err)
	}
	if !pool.Graduated || pool.TotalCommitted != 300 {
		t.Fatalf("pool = %+v, want graduated with 300", pool)
	}
	if err := restarted.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Losing the executor's store while the ledger still names it as owner
	// of alice's records must stop the boot.
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(cfg.DBPath), "executor.db*"))
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove %s: %v", path, err)
		}
	}
	if _, err := build(cfg); err == nil {
		t.Fatal("expected build to fail without the executor store")
	}
}
