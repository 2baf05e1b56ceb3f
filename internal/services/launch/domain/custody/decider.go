package custody

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
)

const entityTypeCustody = "custody"

// Rejection codes owned by custody.
const (
	RejectionInsufficientEphemeralBalance = "INSUFFICIENT_EPHEMERAL_BALANCE"
)

func reject(code, message string) command.Decision {
	return command.Reject(command.Rejection{Code: code, Message: message})
}

// Decide returns the decision for a custody command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeFund:
		return decideFund(state, cmd, now)
	case CommandTypePrivateCommit:
		return decidePrivateCommit(state, cmd, now)
	case CommandTypeSweep:
		return decideSweep(state, cmd, now)
	case CommandTypeReclaim:
		return decideReclaim(state, cmd, now)
	default:
		return reject("COMMAND_TYPE_UNSUPPORTED", "command type is not supported by custody decider")
	}
}

func decideFund(state State, cmd command.Command, now func() time.Time) command.Decision {
	var payload AmountPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	at := now().UTC()
	if rejection := launch.CheckCommitWindow(state.Launch, payload.Amount, at.Unix()); rejection != nil {
		return command.Reject(*rejection)
	}
	if state.Delegated {
		return reject(launch.RejectionAlreadyDelegated, "custody is delegated; fund before delegating")
	}
	if _, err := amount.Add(state.Custody.Balance, payload.Amount); err != nil {
		return reject(launch.RejectionArithmeticOverflow, "custody balance overflows")
	}
	payloadJSON, _ := json.Marshal(AmountPayload{Amount: payload.Amount})
	evt := command.NewEvent(cmd, EventTypeFunded, entityTypeCustody, state.Custody.Key.String(), payloadJSON, at)
	return command.Accept(evt)
}

// decidePrivateCommit debits custody and applies the commitment in one
// decision. Either both events are emitted or neither.
func decidePrivateCommit(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Delegated {
		return reject(launch.RejectionNotDelegated, "custody must be delegated to commit privately")
	}
	var payload AmountPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	at := now().UTC()
	if rejection := launch.CheckCommitWindow(state.Launch, payload.Amount, at.Unix()); rejection != nil {
		return command.Reject(*rejection)
	}
	if _, err := amount.Sub(state.Custody.Balance, payload.Amount); err != nil {
		return reject(RejectionInsufficientEphemeralBalance, fmt.Sprintf("custody balance %d below commitment", state.Custody.Balance))
	}
	commitEvt, rejection := ledger.ApplyCommitment(ledger.State{
		Launch:      state.Launch,
		Pool:        state.Pool,
		Participant: state.Participant,
	}, cmd, payload.Amount, ledger.PathCustody, ledger.EventTypePrivateCommitmentApplied, at)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	payloadJSON, _ := json.Marshal(AmountPayload{Amount: payload.Amount})
	debit := command.NewEvent(cmd, EventTypeDebited, entityTypeCustody, state.Custody.Key.String(), payloadJSON, at)
	return command.Accept(debit, commitEvt)
}

// decideSweep moves what custody committed privately into the vault.
// Commitments paid publicly never passed through custody and are not part
// of the sweep.
func decideSweep(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Launch.Initialized {
		return reject(launch.RejectionLaunchNotFound, "launch not found")
	}
	if state.Delegated {
		return reject(launch.RejectionAlreadyDelegated, "custody is still delegated")
	}
	if state.Custody.Committed == 0 {
		return reject(launch.RejectionNothingToSweep, "custody holds no committed funds")
	}
	available := amount.SaturatingSub(amount.SaturatingSub(state.PhysicalBalance, state.Reserve), state.Custody.Balance)
	if available < state.Custody.Committed {
		return reject(RejectionInsufficientEphemeralBalance, fmt.Sprintf("custody holds %d, committed %d", available, state.Custody.Committed))
	}
	payloadJSON, _ := json.Marshal(SweptPayload{Amount: state.Custody.Committed, Participant: state.Participant.Key})
	evt := command.NewEvent(cmd, EventTypeSwept, entityTypeCustody, state.Custody.Key.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}

// decideReclaim returns funded but uncommitted custody funds to the user
// once the launch has graduated.
func decideReclaim(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Launch.Initialized {
		return reject(launch.RejectionLaunchNotFound, "launch not found")
	}
	if !state.Launch.IsGraduated {
		return reject(launch.RejectionNotGraduated, "launch has not graduated")
	}
	if state.Delegated {
		return reject(launch.RejectionAlreadyDelegated, "custody is still delegated")
	}
	if cmd.ActorID != state.Custody.User.String() {
		return reject(launch.RejectionUnauthorized, "only the custody's user may reclaim it")
	}
	if state.Custody.Balance == 0 {
		return reject(launch.RejectionNothingToSweep, "custody holds no uncommitted funds")
	}
	available := amount.SaturatingSub(state.PhysicalBalance, state.Reserve)
	if available < state.Custody.Balance {
		return reject(RejectionInsufficientEphemeralBalance, fmt.Sprintf("custody holds %d, tracked balance %d", available, state.Custody.Balance))
	}
	payloadJSON, _ := json.Marshal(AmountPayload{Amount: state.Custody.Balance})
	evt := command.NewEvent(cmd, EventTypeReclaimed, entityTypeCustody, state.Custody.Key.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}
