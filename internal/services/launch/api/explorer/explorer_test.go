package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/engine"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
	"github.com/vestige-labs/vestige/internal/services/launch/storage/memory"
)

type explorerFixture struct {
	server    *httptest.Server
	launchKey address.Key
	alice     address.Key
}

func newExplorer(t *testing.T) explorerFixture {
	t.Helper()
	clock := func() time.Time { return time.Unix(1500, 0) }
	registries := engine.MustBuildRegistries()
	store := memory.New(memory.WithEventRegistry(registries.Events), memory.WithClock(clock))
	svc, err := protocol.New(protocol.Config{
		Store:      store,
		Deriver:    address.NewDeriver("vestige-test"),
		Registries: registries,
		Faucet:     true,
		Logger:     zaptest.NewLogger(t),
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("new protocol: %v", err)
	}

	ctx := context.Background()
	creator := address.FromLabel("creator")
	alice := address.FromLabel("alice")
	for _, wallet := range []address.Key{creator, alice} {
		if err := svc.Faucet(ctx, wallet, 1000); err != nil {
			t.Fatalf("faucet: %v", err)
		}
	}
	state, err := svc.InitializeLaunch(ctx, creator, protocol.LaunchParams{
		Asset:            assets.Native,
		TokenSupply:      1_000_000,
		StartTime:        1000,
		EndTime:          2000,
		GraduationTarget: 500,
		MinCommitment:    10,
		MaxCommitment:    1000,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := svc.Commit(ctx, alice, state.Key, 100); err != nil {
		t.Fatalf("commit: %v", err)
	}

	server := httptest.NewServer(New(svc, zaptest.NewLogger(t)))
	t.Cleanup(server.Close)
	return explorerFixture{server: server, launchKey: state.Key, alice: alice}
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestLaunchViews(t *testing.T) {
	f := newExplorer(t)
	base := f.server.URL + "/launches/" + f.launchKey.String()

	var got launchv1.Launch
	getJSON(t, base, http.StatusOK, &got)
	if got.Key != f.launchKey || got.Phase != "open" {
		t.Fatalf("launch = %+v", got)
	}

	var pool launchv1.Pool
	getJSON(t, base+"/pool", http.StatusOK, &pool)
	if pool.Owner != "protocol" || pool.Totals == nil || pool.Totals.TotalCommitted != 100 {
		t.Fatalf("pool = %+v", pool)
	}

	var participant launchv1.Participant
	getJSON(t, base+"/participants/"+f.alice.String(), http.StatusOK, &participant)
	if participant.Commitment == nil || participant.Commitment.Amount != 100 {
		t.Fatalf("participant = %+v", participant)
	}

	var events launchv1.ListEventsResponse
	getJSON(t, base+"/events?limit=1", http.StatusOK, &events)
	if len(events.Events) != 1 || events.Events[0].Type != "launch.initialized" {
		t.Fatalf("events = %+v", events.Events)
	}
}

func TestBalanceView(t *testing.T) {
	f := newExplorer(t)
	var got launchv1.BalanceResponse
	getJSON(t, f.server.URL+"/accounts/"+f.alice.String()+"/balances/"+assets.Native.String(), http.StatusOK, &got)
	if got.Balance != 900 {
		t.Fatalf("balance = %d, want 900", got.Balance)
	}
}

func TestErrorStatuses(t *testing.T) {
	f := newExplorer(t)
	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{name: "malformed key", path: "/launches/not-hex", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{name: "unknown launch", path: "/launches/" + address.FromLabel("nope").String(), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "bad cursor", path: "/launches/" + f.launchKey.String() + "/events?after=x", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{name: "negative limit", path: "/launches/" + f.launchKey.String() + "/events?limit=-1", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			getJSON(t, f.server.URL+tt.path, tt.status, &body)
			if body.Code != tt.code {
				t.Fatalf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}
