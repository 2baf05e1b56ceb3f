package ledger

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/allocation"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
)

var (
	testDeriver = address.NewDeriver("vestige-test")
	testCreator = address.FromLabel("creator")
	testLaunch  = testDeriver.Launch(testCreator, address.Zero)
)

func fixedNow(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0).UTC() }
}

func openLaunch() launch.State {
	return launch.State{
		Initialized:      true,
		Key:              testLaunch,
		Creator:          testCreator,
		TokenSupply:      1000,
		StartTime:        0,
		EndTime:          1000,
		GraduationTarget: 1_000_000,
		MinCommitment:    1,
		MaxCommitment:    1_000_000,
	}
}

func newParticipant(user string) Participant {
	userKey := address.FromLabel(user)
	return Participant{
		Key:    testDeriver.Participant(testLaunch, userKey),
		Launch: testLaunch,
		User:   userKey,
	}
}

func commitCommand(t *testing.T, user string, cmdType command.Type, value uint64) command.Command {
	t.Helper()
	cmd, err := command.NewPayload(testLaunch.String(), cmdType, address.FromLabel(user).String(), CommitPayload{Amount: value})
	if err != nil {
		t.Fatalf("new payload: %v", err)
	}
	return cmd
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

func requireEvent(t *testing.T, decision command.Decision) {
	t.Helper()
	if len(decision.Rejections) != 0 {
		t.Fatalf("expected no rejections, got %v", decision.Rejections)
	}
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
}

func TestDecideCommit_FirstCommitCountsParticipant(t *testing.T) {
	state := State{Launch: openLaunch(), Pool: Pool{Key: testDeriver.Pool(testLaunch)}, Participant: newParticipant("alice")}

	decision := Decide(state, commitCommand(t, "alice", CommandTypeCommit, 300), fixedNow(10))
	requireEvent(t, decision)
	evt := decision.Events[0]
	if evt.Type != EventTypeCommitmentApplied {
		t.Fatalf("event type = %s, want %s", evt.Type, EventTypeCommitmentApplied)
	}
	var payload CommitmentAppliedPayload
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !payload.NewParticipant || payload.Path != PathDirect || payload.CommitTime != 10 {
		t.Fatalf("payload = %+v", payload)
	}

	state.Pool = FoldPool(state.Pool, evt)
	state.Participant = FoldParticipant(state.Participant, evt)
	if state.Pool.TotalCommitted != 300 || state.Pool.TotalParticipants != 1 {
		t.Fatalf("pool = %+v", state.Pool)
	}
	if state.Participant.Amount != 300 || state.Participant.CommitTime != 10 || state.Participant.Allocated() {
		t.Fatalf("participant = %+v", state.Participant)
	}

	decision = Decide(state, commitCommand(t, "alice", CommandTypeRecordCommit, 200), fixedNow(20))
	requireEvent(t, decision)
	state.Pool = FoldPool(state.Pool, decision.Events[0])
	state.Participant = FoldParticipant(state.Participant, decision.Events[0])
	if state.Pool.TotalCommitted != 500 || state.Pool.TotalParticipants != 1 {
		t.Fatalf("pool after repeat = %+v", state.Pool)
	}
	if state.Participant.CommitTime != 20 {
		t.Fatalf("commit time = %d, want 20", state.Participant.CommitTime)
	}
}

func TestDecideCommit_PoolTotalMatchesParticipantSum(t *testing.T) {
	launchState := openLaunch()
	pool := Pool{Key: testDeriver.Pool(testLaunch), Launch: testLaunch}
	participants := map[string]Participant{}
	commits := []struct {
		user  string
		cmd   command.Type
		value uint64
	}{
		{"alice", CommandTypeCommit, 100},
		{"bob", CommandTypeRecordCommit, 250},
		{"alice", CommandTypePrivateRecordCommit, 50},
		{"carol", CommandTypePrivateRecordCommit, 1},
		{"bob", CommandTypeCommit, 999},
	}
	for i, c := range commits {
		p, ok := participants[c.user]
		if !ok {
			p = newParticipant(c.user)
		}
		decision := Decide(State{Launch: launchState, Pool: pool, Participant: p}, commitCommand(t, c.user, c.cmd, c.value), fixedNow(int64(i)))
		requireEvent(t, decision)
		pool = FoldPool(pool, decision.Events[0])
		participants[c.user] = FoldParticipant(p, decision.Events[0])
	}

	var sum uint64
	for _, p := range participants {
		sum += p.Amount
	}
	if pool.TotalCommitted != sum {
		t.Fatalf("pool total = %d, participant sum = %d", pool.TotalCommitted, sum)
	}
	if pool.TotalParticipants != uint64(len(participants)) {
		t.Fatalf("pool participants = %d, want %d", pool.TotalParticipants, len(participants))
	}
}

func TestDecideCommit_PrivateVenueEmitsPrivateEvent(t *testing.T) {
	state := State{Launch: openLaunch(), Participant: newParticipant("alice")}
	decision := Decide(state, commitCommand(t, "alice", CommandTypePrivateRecordCommit, 5), fixedNow(1))
	requireEvent(t, decision)
	if decision.Events[0].Type != EventTypePrivateCommitmentApplied {
		t.Fatalf("event type = %s, want %s", decision.Events[0].Type, EventTypePrivateCommitmentApplied)
	}
}

func TestDecideCommit_Rejections(t *testing.T) {
	graduatedPool := Pool{Graduated: true, GraduationTime: 5}
	full := newParticipant("alice")
	full.Amount = math.MaxUint64
	tests := []struct {
		name  string
		state State
		value uint64
		now   int64
		code  string
	}{
		{name: "pool graduated", state: State{Launch: openLaunch(), Pool: graduatedPool}, value: 5, now: 10, code: launch.RejectionAlreadyGraduated},
		{name: "not started", state: State{Launch: openLaunch()}, value: 5, now: -1, code: launch.RejectionLaunchNotStarted},
		{name: "ended", state: State{Launch: openLaunch()}, value: 5, now: 1001, code: launch.RejectionLaunchEnded},
		{name: "above max", state: State{Launch: openLaunch()}, value: 1_000_001, now: 10, code: launch.RejectionAboveMaxCommitment},
		{name: "zero", state: State{Launch: openLaunch()}, value: 0, now: 10, code: launch.RejectionBelowMinCommitment},
		{name: "participant overflow", state: State{Launch: openLaunch(), Participant: full}, value: 1, now: 10, code: launch.RejectionArithmeticOverflow},
		{name: "pool overflow", state: State{Launch: openLaunch(), Pool: Pool{TotalCommitted: math.MaxUint64}}, value: 1, now: 10, code: launch.RejectionArithmeticOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.state, commitCommand(t, "alice", CommandTypeCommit, tt.value), fixedNow(tt.now))
			requireRejection(t, decision, tt.code)
		})
	}
}

func TestDecideGraduatePool(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeGraduatePool, ActorID: "executor"}
	state := State{Launch: openLaunch(), Pool: Pool{TotalCommitted: 10, TotalParticipants: 1}}

	requireRejection(t, Decide(state, cmd, fixedNow(500)), launch.RejectionGraduationConditionsNotMet)

	decision := Decide(state, cmd, fixedNow(1001))
	requireEvent(t, decision)
	state.Pool = FoldPool(state.Pool, decision.Events[0])
	if !state.Pool.Graduated || state.Pool.GraduationTime != 1001 {
		t.Fatalf("pool = %+v", state.Pool)
	}
	requireRejection(t, Decide(state, cmd, fixedNow(1002)), launch.RejectionAlreadyGraduated)
}

func graduatedState(total uint64) State {
	l := openLaunch()
	l.IsGraduated = true
	l.TotalCommitted = total
	l.TotalParticipants = 2
	l.GraduationTime = 1001
	return State{Launch: l, Allocation: allocation.DefaultParams()}
}

func TestDecideCalculateAllocation(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeCalculateAllocation, ActorID: "anyone"}
	state := graduatedState(1000)
	state.Participant = newParticipant("alice")
	state.Participant.Amount = 300
	state.Participant.CommitTime = 1000

	decision := Decide(state, cmd, fixedNow(2000))
	requireEvent(t, decision)
	state.Participant = FoldParticipant(state.Participant, decision.Events[0])
	if !state.Participant.Allocated() {
		t.Fatal("expected allocation to be set")
	}
	if got := state.Participant.AllocatedTokens(); got != 300 {
		t.Fatalf("tokens = %d, want 300", got)
	}
	if state.Participant.Allocation.Weight != allocation.BasisPoints {
		t.Fatalf("weight = %d, want %d", state.Participant.Allocation.Weight, allocation.BasisPoints)
	}

	requireRejection(t, Decide(state, cmd, fixedNow(2001)), RejectionAllocationAlreadyCalculated)
}

func TestDecideCalculateAllocation_Rejections(t *testing.T) {
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeCalculateAllocation, ActorID: "anyone"}

	open := State{Launch: openLaunch(), Participant: newParticipant("alice")}
	open.Participant.Amount = 5
	requireRejection(t, Decide(open, cmd, fixedNow(10)), launch.RejectionNotGraduated)

	empty := graduatedState(0)
	empty.Participant = newParticipant("bob")
	requireRejection(t, Decide(empty, cmd, fixedNow(2000)), RejectionNoCommitment)
}

func TestDecideClaim(t *testing.T) {
	state := graduatedState(1000)
	state.Participant = newParticipant("alice")
	state.Participant.Amount = 300
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeClaim, ActorID: state.Participant.User.String()}

	requireRejection(t, Decide(state, cmd, fixedNow(2000)), RejectionNoAllocation)

	state.Participant.Allocation = &Allocation{Weight: 10000, Tokens: 300, ComputedAt: 1500}
	intruder := cmd
	intruder.ActorID = address.FromLabel("mallory").String()
	requireRejection(t, Decide(state, intruder, fixedNow(2000)), launch.RejectionUnauthorized)

	decision := Decide(state, cmd, fixedNow(2000))
	requireEvent(t, decision)
	var payload ClaimPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Tokens != 300 {
		t.Fatalf("tokens = %d, want 300", payload.Tokens)
	}
	state.Participant = FoldParticipant(state.Participant, decision.Events[0])
	if !state.Participant.Claimed {
		t.Fatal("expected claimed flag")
	}
	requireRejection(t, Decide(state, cmd, fixedNow(2001)), RejectionAlreadyClaimed)
}

func TestDecideClaim_ZeroAllocationHasNothingToClaim(t *testing.T) {
	state := graduatedState(1000)
	state.Participant = newParticipant("alice")
	state.Participant.Amount = 1
	state.Participant.Allocation = &Allocation{Weight: 10000}
	cmd := command.Command{LaunchID: testLaunch.String(), Type: CommandTypeClaim, ActorID: state.Participant.User.String()}
	requireRejection(t, Decide(state, cmd, fixedNow(2000)), RejectionNoAllocation)
}
