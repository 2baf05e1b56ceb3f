package launch

import (
	"encoding/json"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
)

const entityTypeLaunch = "launch"

// Snapshot is the state a launch command is decided against. Pool is the
// trusted view of the pool; VaultBalance and Reserve are only read by
// withdrawals.
type Snapshot struct {
	Launch       State
	Pool         PoolTotals
	PoolReadable bool
	VaultBalance uint64
	Reserve      uint64
}

// Decide returns the decision for a launch command against current state.
func Decide(snap Snapshot, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeInitialize:
		return decideInitialize(snap.Launch, cmd, now)
	case CommandTypeMarkDelegate:
		return decideMarkDelegated(snap.Launch, cmd, now)
	case CommandTypeGraduate:
		return decideGraduate(snap, cmd, now)
	case CommandTypeFinalize:
		return decideFinalize(snap, cmd, now)
	case CommandTypeWithdraw:
		return decideWithdraw(snap, cmd, now)
	case CommandTypeDeposit:
		return decideDeposit(snap.Launch, cmd, now)
	default:
		return reject("COMMAND_TYPE_UNSUPPORTED", "command type is not supported by launch decider")
	}
}

func decideInitialize(state State, cmd command.Command, now func() time.Time) command.Decision {
	if state.Initialized {
		return reject(RejectionLaunchExists, "launch already exists")
	}
	var payload InitializePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)

	if payload.EndTime <= payload.StartTime {
		return reject(RejectionInvalidTimeRange, "end time must be after start time")
	}
	if payload.TokenSupply == 0 {
		return reject(RejectionInvalidTokenSupply, "token supply must be positive")
	}
	if payload.GraduationTarget == 0 {
		return reject(RejectionInvalidGraduationTarget, "graduation target must be positive")
	}
	if payload.MaxCommitment == 0 || payload.MinCommitment > payload.MaxCommitment {
		return reject(RejectionInvalidCommitmentLimits, "commitment limits must satisfy 0 < max and min <= max")
	}
	if payload.Creator.String() != cmd.ActorID {
		return reject(RejectionUnauthorized, "launch must be opened by its creator")
	}

	payloadJSON, _ := json.Marshal(payload)
	evt := command.NewEvent(cmd, EventTypeInitialized, entityTypeLaunch, payload.Launch.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}

func decideMarkDelegated(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Initialized {
		return reject(RejectionLaunchNotFound, "launch not found")
	}
	if state.Creator.String() != cmd.ActorID {
		return reject(RejectionUnauthorized, "only the creator may mark a launch delegated")
	}
	if state.IsGraduated {
		return reject(RejectionAlreadyGraduated, "launch already graduated")
	}
	if state.IsDelegated {
		return reject(RejectionAlreadyDelegated, "launch already delegated")
	}
	evt := command.NewEvent(cmd, EventTypeDelegated, entityTypeLaunch, state.Key.String(), []byte(`{}`), now().UTC())
	return command.Accept(evt)
}

func decideGraduate(snap Snapshot, cmd command.Command, now func() time.Time) command.Decision {
	state := snap.Launch
	if !state.Initialized {
		return reject(RejectionLaunchNotFound, "launch not found")
	}
	if state.IsGraduated {
		return reject(RejectionAlreadyGraduated, "launch already graduated")
	}
	if state.IsDelegated || !snap.PoolReadable {
		return reject(RejectionAlreadyDelegated, "launch is delegated; graduate through the private executor")
	}
	at := now().UTC()
	reason, rejection := CheckGraduation(state, snap.Pool, at.Unix())
	if rejection != nil {
		return command.Reject(*rejection)
	}
	payloadJSON, _ := json.Marshal(GraduatedPayload{
		TotalCommitted:    snap.Pool.TotalCommitted,
		TotalParticipants: snap.Pool.TotalParticipants,
		GraduationTime:    at.Unix(),
		Reason:            reason,
	})
	evt := command.NewEvent(cmd, EventTypeGraduated, entityTypeLaunch, state.Key.String(), payloadJSON, at)
	return command.Accept(evt)
}

// decideFinalize trusts the pool's own graduated flag and time. The caller
// must have promoted the pool bytes to a trusted view first.
func decideFinalize(snap Snapshot, cmd command.Command, now func() time.Time) command.Decision {
	state := snap.Launch
	if !state.Initialized {
		return reject(RejectionLaunchNotFound, "launch not found")
	}
	if state.IsGraduated {
		return reject(RejectionAlreadyGraduated, "launch already graduated")
	}
	if !state.IsDelegated {
		return reject(RejectionNotDelegated, "launch is not delegated; use graduate")
	}
	if !snap.PoolReadable || !snap.Pool.Graduated || snap.Pool.TotalCommitted == 0 {
		return reject(RejectionInvalidAccountData, "pool is not a graduated pool with commitments")
	}
	payloadJSON, _ := json.Marshal(GraduatedPayload{
		TotalCommitted:    snap.Pool.TotalCommitted,
		TotalParticipants: snap.Pool.TotalParticipants,
		GraduationTime:    snap.Pool.GraduationTime,
	})
	evt := command.NewEvent(cmd, EventTypeFinalized, entityTypeLaunch, state.Key.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}

func decideWithdraw(snap Snapshot, cmd command.Command, now func() time.Time) command.Decision {
	state := snap.Launch
	if !state.Initialized {
		return reject(RejectionLaunchNotFound, "launch not found")
	}
	if state.Creator.String() != cmd.ActorID {
		return reject(RejectionUnauthorized, "only the creator may withdraw funds")
	}
	if !state.IsGraduated {
		return reject(RejectionNotGraduated, "launch has not graduated")
	}
	withdrawable := amount.SaturatingSub(snap.VaultBalance, snap.Reserve)
	if withdrawable == 0 {
		return reject(RejectionNothingToSweep, "vault holds nothing above the minimum reserve")
	}
	payloadJSON, _ := json.Marshal(WithdrawPayload{Amount: withdrawable, Recipient: state.Creator})
	evt := command.NewEvent(cmd, EventTypeWithdrawn, "vault", state.Key.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}

// decideDeposit admits funds into the vault ahead of a record_commit. The
// same window guard as a commitment applies.
func decideDeposit(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload DepositPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	at := now().UTC()
	if rejection := CheckCommitWindow(state, payload.Amount, at.Unix()); rejection != nil {
		return command.Reject(*rejection)
	}
	depositor, err := address.Parse(cmd.ActorID)
	if err != nil {
		return reject(RejectionUnauthorized, "depositor must be a key")
	}
	payloadJSON, _ := json.Marshal(DepositPayload{Amount: payload.Amount, Depositor: depositor})
	evt := command.NewEvent(cmd, EventTypeDeposited, "vault", state.Key.String(), payloadJSON, at)
	return command.Accept(evt)
}

// Creator parses a command actor as a key. Deciders compare hex strings
// directly; callers that need the key use this helper.
func Creator(cmd command.Command) (address.Key, error) {
	return address.Parse(cmd.ActorID)
}
