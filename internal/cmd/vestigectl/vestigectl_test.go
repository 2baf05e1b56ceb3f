package vestigectl

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/app"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/engine"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/memory"
	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

const testDefinition = `asset: native
token_supply: 1000000
start: 1970-01-01T00:16:40Z
duration: 1000s
graduation_target: 500
min_commitment: 10
max_commitment: 1000
`

func startServer(t *testing.T) string {
	t.Helper()
	clock := func() time.Time { return time.Unix(1500, 0) }
	registries := engine.MustBuildRegistries()
	server, err := app.New(app.Config{
		GRPCAddr:         "127.0.0.1:0",
		ProgramID:        "vestige-test",
		ExecutorIdentity: "exec-1",
		Faucet:           true,
		Logger:           zaptest.NewLogger(t),
		Store:            memory.New(memory.WithEventRegistry(registries.Events), memory.WithClock(clock)),
		Clock:            clock,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return server.Addr()
}

func run(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(Options{Now: func() time.Time { return time.Unix(1500, 0) }})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--addr", addr}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, addr string, args ...string) string {
	t.Helper()
	out, err := run(t, addr, args...)
	if err != nil {
		t.Fatalf("vestigectl %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestLaunchAndCommitFlow(t *testing.T) {
	addr := startServer(t)
	path := filepath.Join(t.TempDir(), "launch.yaml")
	if err := os.WriteFile(path, []byte(testDefinition), 0o600); err != nil {
		t.Fatalf("write definition: %v", err)
	}

	mustRun(t, addr, "faucet", "creator", "--amount", "100")
	mustRun(t, addr, "faucet", "alice", "--amount", "500")

	var created launchv1.LaunchResponse
	if err := json.Unmarshal([]byte(mustRun(t, addr, "--as", "creator", "launch", "init", "-f", path)), &created); err != nil {
		t.Fatalf("decode init output: %v", err)
	}
	if created.Launch.Creator != walletauth.FromLabel("creator").Key || created.Launch.EndTime != 2000 {
		t.Fatalf("launch = %+v", created.Launch)
	}
	launchKey := created.Launch.Key.String()

	mustRun(t, addr, "--as", "alice", "commit", launchKey, "--amount", "200")

	var participant launchv1.ParticipantResponse
	if err := json.Unmarshal([]byte(mustRun(t, addr, "--as", "alice", "participant", launchKey)), &participant); err != nil {
		t.Fatalf("decode participant output: %v", err)
	}
	if c := participant.Participant.Commitment; c == nil || c.Amount != 200 {
		t.Fatalf("participant = %+v", participant.Participant)
	}

	var balance launchv1.BalanceResponse
	if err := json.Unmarshal([]byte(mustRun(t, addr, "balance", "alice")), &balance); err != nil {
		t.Fatalf("decode balance output: %v", err)
	}
	if balance.Balance != 300 {
		t.Fatalf("alice balance = %d, want 300", balance.Balance)
	}
}

func TestRejectionsPrintDomainCode(t *testing.T) {
	addr := startServer(t)
	path := filepath.Join(t.TempDir(), "launch.yaml")
	if err := os.WriteFile(path, []byte(testDefinition), 0o600); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	mustRun(t, addr, "faucet", "creator", "--amount", "100")
	mustRun(t, addr, "faucet", "alice", "--amount", "500")
	var created launchv1.LaunchResponse
	if err := json.Unmarshal([]byte(mustRun(t, addr, "--as", "creator", "launch", "init", "-f", path)), &created); err != nil {
		t.Fatalf("decode init output: %v", err)
	}

	_, err := run(t, addr, "--as", "alice", "commit", created.Launch.Key.String(), "--amount", "5")
	if err == nil || !strings.HasPrefix(err.Error(), "BELOW_MIN_COMMITMENT") {
		t.Fatalf("error = %v, want BELOW_MIN_COMMITMENT", err)
	}
	_, err = run(t, addr, "--as", "alice", "commit", created.Launch.Key.String(), "--amount", "50", "--venue", "nowhere")
	if err == nil || !strings.Contains(err.Error(), "unknown venue") {
		t.Fatalf("error = %v, want unknown venue", err)
	}
}

func TestParseKey(t *testing.T) {
	hexKey := address.FromLabel("x").String()
	tests := []struct {
		in   string
		want address.Key
	}{
		{in: "native", want: assets.Native},
		{in: hexKey, want: address.FromLabel("x")},
		{in: "alice", want: walletauth.FromLabel("alice").Key},
	}
	for _, tt := range tests {
		got, err := parseKey(tt.in)
		if err != nil {
			t.Fatalf("parseKey(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseKey(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := parseKey(" "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestWalletFromSeed(t *testing.T) {
	s := &session{seed: strings.Repeat("01", 32)}
	wallet, ok, err := s.wallet()
	if err != nil || !ok {
		t.Fatalf("wallet = %v, %v", ok, err)
	}
	if wallet.Key.IsZero() {
		t.Fatal("expected a wallet key")
	}

	s.actor = "alice"
	wallet, _, _ = s.wallet()
	if wallet.Key != walletauth.FromLabel("alice").Key {
		t.Fatal("expected --as to win over the seed")
	}

	if _, _, err := (&session{seed: "zz"}).wallet(); err == nil {
		t.Fatal("expected error for malformed seed")
	}
}

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(testDefinition))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	req, err := def.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.StartTime != 1000 || req.EndTime != 2000 || req.Asset != assets.Native {
		t.Fatalf("request = %+v", req)
	}

	if _, err := ParseDefinition([]byte("start: 1970-01-01T00:00:00Z\nsupply: 1\n")); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := ParseDefinition([]byte("token_supply: 1\n")); err == nil {
		t.Fatal("expected missing start error")
	}
	both := "start: 1970-01-01T00:00:00Z\nend: 1970-01-01T01:00:00Z\nduration: 1h\n"
	if _, err := ParseDefinition([]byte(both)); err == nil {
		t.Fatal("expected error when end and duration are both set")
	}
}
