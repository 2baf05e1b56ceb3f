package launch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
)

var (
	testCreator = address.FromLabel("creator")
	testLaunch  = address.FromLabel("launch")
)

func fixedNow(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0).UTC() }
}

func openState() State {
	return State{
		Initialized:      true,
		Key:              testLaunch,
		Creator:          testCreator,
		TokenSupply:      1000,
		StartTime:        0,
		EndTime:          100,
		GraduationTarget: 1_000_000,
		MinCommitment:    10,
		MaxCommitment:    1_000_000,
	}
}

func initializeCommand(t *testing.T, payload InitializePayload) command.Command {
	t.Helper()
	cmd, err := command.NewPayload(testLaunch.String(), CommandTypeInitialize, testCreator.String(), payload)
	if err != nil {
		t.Fatalf("new payload: %v", err)
	}
	return cmd
}

func validInitialize() InitializePayload {
	return InitializePayload{
		Launch:           testLaunch,
		Creator:          testCreator,
		TokenSupply:      1000,
		StartTime:        0,
		EndTime:          100,
		GraduationTarget: 1_000_000,
		MinCommitment:    10,
		MaxCommitment:    1_000_000,
	}
}

func requireRejection(t *testing.T, decision command.Decision, code string) {
	t.Helper()
	if len(decision.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(decision.Events))
	}
	if len(decision.Rejections) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(decision.Rejections))
	}
	if decision.Rejections[0].Code != code {
		t.Fatalf("rejection code = %s, want %s", decision.Rejections[0].Code, code)
	}
}

func TestDecideInitialize_EmitsInitializedEvent(t *testing.T) {
	cmd := initializeCommand(t, validInitialize())

	decision := Decide(Snapshot{}, cmd, fixedNow(0))
	if len(decision.Rejections) != 0 {
		t.Fatalf("expected no rejections, got %v", decision.Rejections)
	}
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	evt := decision.Events[0]
	if evt.Type != EventTypeInitialized {
		t.Fatalf("event type = %s, want %s", evt.Type, EventTypeInitialized)
	}
	if evt.EntityID != testLaunch.String() {
		t.Fatalf("event entity id = %s, want %s", evt.EntityID, testLaunch)
	}

	state := Fold(State{}, evt)
	if !state.Initialized || state.Creator != testCreator || state.TokenSupply != 1000 {
		t.Fatalf("folded state = %+v", state)
	}
	if got := DerivePhase(state, PoolTotals{}); got != PhaseOpen {
		t.Fatalf("phase = %s, want %s", got, PhaseOpen)
	}
}

func TestDecideInitialize_RejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InitializePayload)
		code   string
	}{
		{name: "end equals start", mutate: func(p *InitializePayload) { p.EndTime = p.StartTime }, code: RejectionInvalidTimeRange},
		{name: "end before start", mutate: func(p *InitializePayload) { p.EndTime = -1 }, code: RejectionInvalidTimeRange},
		{name: "zero supply", mutate: func(p *InitializePayload) { p.TokenSupply = 0 }, code: RejectionInvalidTokenSupply},
		{name: "zero target", mutate: func(p *InitializePayload) { p.GraduationTarget = 0 }, code: RejectionInvalidGraduationTarget},
		{name: "zero max", mutate: func(p *InitializePayload) { p.MinCommitment, p.MaxCommitment = 0, 0 }, code: RejectionInvalidCommitmentLimits},
		{name: "min above max", mutate: func(p *InitializePayload) { p.MinCommitment = p.MaxCommitment + 1 }, code: RejectionInvalidCommitmentLimits},
		{name: "creator mismatch", mutate: func(p *InitializePayload) { p.Creator = address.FromLabel("other") }, code: RejectionUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validInitialize()
			tt.mutate(&payload)
			decision := Decide(Snapshot{}, initializeCommand(t, payload), fixedNow(0))
			requireRejection(t, decision, tt.code)
		})
	}
}

func TestDecideInitialize_RejectsExistingLaunch(t *testing.T) {
	decision := Decide(Snapshot{Launch: openState()}, initializeCommand(t, validInitialize()), fixedNow(0))
	requireRejection(t, decision, RejectionLaunchExists)
}

func TestDecideGraduate_TargetReachedThenAlreadyGraduated(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeGraduate, ActorID: "anyone"}
	snap := Snapshot{
		Launch:       openState(),
		Pool:         PoolTotals{TotalCommitted: 1_000_000, TotalParticipants: 1},
		PoolReadable: true,
	}

	decision := Decide(snap, cmd, fixedNow(1))
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d (rejections %v)", len(decision.Events), decision.Rejections)
	}
	var payload GraduatedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Reason != ReasonTargetReached {
		t.Fatalf("reason = %s, want %s", payload.Reason, ReasonTargetReached)
	}

	snap.Launch = Fold(snap.Launch, decision.Events[0])
	if snap.Launch.TotalCommitted != 1_000_000 || snap.Launch.TotalParticipants != 1 || snap.Launch.GraduationTime != 1 {
		t.Fatalf("folded totals = %+v", snap.Launch)
	}
	requireRejection(t, Decide(snap, cmd, fixedNow(2)), RejectionAlreadyGraduated)
}

func TestDecideGraduate_DeadlinePath(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeGraduate, ActorID: "anyone"}
	snap := Snapshot{Launch: openState(), PoolReadable: true}

	requireRejection(t, Decide(snap, cmd, fixedNow(100)), RejectionGraduationConditionsNotMet)

	decision := Decide(snap, cmd, fixedNow(101))
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d (rejections %v)", len(decision.Events), decision.Rejections)
	}
	var payload GraduatedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Reason != ReasonDeadline || payload.TotalCommitted != 0 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDecideGraduate_DelegatedLaunchRejected(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeGraduate, ActorID: "anyone"}
	state := openState()
	state.IsDelegated = true
	requireRejection(t, Decide(Snapshot{Launch: state, PoolReadable: true}, cmd, fixedNow(200)), RejectionAlreadyDelegated)
	requireRejection(t, Decide(Snapshot{Launch: openState()}, cmd, fixedNow(200)), RejectionAlreadyDelegated)
}

func TestDecideMarkDelegated(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeMarkDelegate, ActorID: testCreator.String()}
	state := openState()

	decision := Decide(Snapshot{Launch: state}, cmd, fixedNow(0))
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	state = Fold(state, decision.Events[0])
	if !state.IsDelegated {
		t.Fatal("expected launch to be delegated")
	}
	if got := DerivePhase(state, PoolTotals{}); got != PhaseDelegated {
		t.Fatalf("phase = %s, want %s", got, PhaseDelegated)
	}
	requireRejection(t, Decide(Snapshot{Launch: state}, cmd, fixedNow(0)), RejectionAlreadyDelegated)

	cmd.ActorID = "intruder"
	requireRejection(t, Decide(Snapshot{Launch: openState()}, cmd, fixedNow(0)), RejectionUnauthorized)
}

func TestDecideFinalize(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeFinalize, ActorID: "anyone"}
	state := openState()
	state.IsDelegated = true
	pool := PoolTotals{TotalCommitted: 500, TotalParticipants: 2, Graduated: true, GraduationTime: 101}

	requireRejection(t, Decide(Snapshot{Launch: openState(), Pool: pool, PoolReadable: true}, cmd, fixedNow(102)), RejectionNotDelegated)
	requireRejection(t, Decide(Snapshot{Launch: state, PoolReadable: false}, cmd, fixedNow(102)), RejectionInvalidAccountData)
	requireRejection(t, Decide(Snapshot{Launch: state, Pool: PoolTotals{TotalCommitted: 500}, PoolReadable: true}, cmd, fixedNow(102)), RejectionInvalidAccountData)
	requireRejection(t, Decide(Snapshot{Launch: state, Pool: PoolTotals{Graduated: true}, PoolReadable: true}, cmd, fixedNow(102)), RejectionInvalidAccountData)
	if got := DerivePhase(state, pool); got != PhaseGraduated {
		t.Fatalf("phase = %s, want %s", got, PhaseGraduated)
	}

	decision := Decide(Snapshot{Launch: state, Pool: pool, PoolReadable: true}, cmd, fixedNow(500))
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d (rejections %v)", len(decision.Events), decision.Rejections)
	}
	state = Fold(state, decision.Events[0])
	if !state.IsGraduated || state.IsDelegated {
		t.Fatalf("flags = graduated %v delegated %v", state.IsGraduated, state.IsDelegated)
	}
	if state.GraduationTime != 101 || state.TotalCommitted != 500 || state.TotalParticipants != 2 {
		t.Fatalf("folded totals = %+v", state)
	}
	if got := DerivePhase(state, pool); got != PhaseFinalized {
		t.Fatalf("phase = %s, want %s", got, PhaseFinalized)
	}
}

func TestDecideWithdraw(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeWithdraw, ActorID: testCreator.String()}
	state := openState()

	requireRejection(t, Decide(Snapshot{Launch: state, VaultBalance: 5000, Reserve: 100}, cmd, fixedNow(200)), RejectionNotGraduated)

	state.IsGraduated = true
	intruder := cmd
	intruder.ActorID = "intruder"
	requireRejection(t, Decide(Snapshot{Launch: state, VaultBalance: 5000, Reserve: 100}, intruder, fixedNow(200)), RejectionUnauthorized)
	requireRejection(t, Decide(Snapshot{Launch: state, VaultBalance: 100, Reserve: 100}, cmd, fixedNow(200)), RejectionNothingToSweep)

	decision := Decide(Snapshot{Launch: state, VaultBalance: 5000, Reserve: 100}, cmd, fixedNow(200))
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
	var payload WithdrawPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Amount != 4900 || payload.Recipient != testCreator {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDecideDeposit(t *testing.T) {
	depositor := address.FromLabel("alice")
	cmd, err := command.NewPayload(testLaunch.String(), CommandTypeDeposit, depositor.String(), DepositPayload{Amount: 500})
	if err != nil {
		t.Fatalf("new payload: %v", err)
	}

	decision := Decide(Snapshot{Launch: openState()}, cmd, fixedNow(50))
	if len(decision.Events) != 1 || decision.Events[0].Type != EventTypeDeposited {
		t.Fatalf("decision = %+v, want one deposited event", decision)
	}
	var payload DepositPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Amount != 500 || payload.Depositor != depositor {
		t.Fatalf("payload = %+v", payload)
	}

	requireRejection(t, Decide(Snapshot{Launch: openState()}, cmd, fixedNow(101)), RejectionLaunchEnded)
}

func TestCheckCommitWindow_Boundaries(t *testing.T) {
	state := openState()
	tests := []struct {
		name   string
		amount uint64
		now    int64
		code   string
	}{
		{name: "exact min", amount: 10, now: 50},
		{name: "exact max", amount: 1_000_000, now: 50},
		{name: "one below min", amount: 9, now: 50, code: RejectionBelowMinCommitment},
		{name: "one above max", amount: 1_000_001, now: 50, code: RejectionAboveMaxCommitment},
		{name: "zero", amount: 0, now: 50, code: RejectionBelowMinCommitment},
		{name: "at start", amount: 10, now: 0},
		{name: "at end", amount: 10, now: 100},
		{name: "before start", amount: 10, now: -1, code: RejectionLaunchNotStarted},
		{name: "after end", amount: 10, now: 101, code: RejectionLaunchEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejection := CheckCommitWindow(state, tt.amount, tt.now)
			if tt.code == "" {
				if rejection != nil {
					t.Fatalf("unexpected rejection %s", rejection.Code)
				}
				return
			}
			if rejection == nil || rejection.Code != tt.code {
				t.Fatalf("rejection = %v, want %s", rejection, tt.code)
			}
		})
	}

	graduated := openState()
	graduated.IsGraduated = true
	if rejection := CheckCommitWindow(graduated, 10, 50); rejection == nil || rejection.Code != RejectionAlreadyGraduated {
		t.Fatalf("rejection = %v, want %s", rejection, RejectionAlreadyGraduated)
	}
	if rejection := CheckCommitWindow(State{}, 10, 50); rejection == nil || rejection.Code != RejectionLaunchNotFound {
		t.Fatalf("rejection = %v, want %s", rejection, RejectionLaunchNotFound)
	}
}
