package ledger

import (
	"encoding/json"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/allocation"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
)

const (
	entityTypePool        = "pool"
	entityTypeParticipant = "participant"
)

// State is what a ledger command is decided against. Participant.Key must be
// set even when the participant record does not exist yet.
type State struct {
	Launch      launch.State
	Pool        Pool
	Participant Participant
	Allocation  allocation.Params
}

// Decide returns the decision for a ledger command against current state.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	switch cmd.Type {
	case CommandTypeCommit:
		return decideCommit(state, cmd, PathDirect, EventTypeCommitmentApplied, now)
	case CommandTypeRecordCommit:
		return decideCommit(state, cmd, PathDeposit, EventTypeCommitmentApplied, now)
	case CommandTypePrivateRecordCommit:
		return decideCommit(state, cmd, PathDeposit, EventTypePrivateCommitmentApplied, now)
	case CommandTypeGraduatePool:
		return decideGraduatePool(state, cmd, now)
	case CommandTypeCalculateAllocation:
		return decideCalculateAllocation(state, cmd, now)
	case CommandTypeClaim:
		return decideClaim(state, cmd, now)
	default:
		return reject("COMMAND_TYPE_UNSUPPORTED", "command type is not supported by ledger decider")
	}
}

func decideCommit(state State, cmd command.Command, path string, eventType event.Type, now func() time.Time) command.Decision {
	var payload CommitPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	evt, rejection := ApplyCommitment(state, cmd, payload.Amount, path, eventType, now().UTC())
	if rejection != nil {
		return command.Reject(*rejection)
	}
	return command.Accept(evt)
}

// ApplyCommitment is the single commitment mutation every path shares. It
// runs the window guard and the checked additions, and returns the event to
// fold onto both the pool and the participant.
func ApplyCommitment(state State, cmd command.Command, value uint64, path string, eventType event.Type, at time.Time) (event.Event, *command.Rejection) {
	if state.Pool.Graduated {
		return event.Event{}, launch.Rejection(launch.RejectionAlreadyGraduated, "pool already graduated")
	}
	if rejection := launch.CheckCommitWindow(state.Launch, value, at.Unix()); rejection != nil {
		return event.Event{}, rejection
	}
	if _, err := amount.Add(state.Participant.Amount, value); err != nil {
		return event.Event{}, launch.Rejection(launch.RejectionArithmeticOverflow, "participant amount overflows")
	}
	if _, err := amount.Add(state.Pool.TotalCommitted, value); err != nil {
		return event.Event{}, launch.Rejection(launch.RejectionArithmeticOverflow, "pool total overflows")
	}
	newParticipant := state.Participant.Amount == 0
	if newParticipant {
		if _, err := amount.Add(state.Pool.TotalParticipants, 1); err != nil {
			return event.Event{}, launch.Rejection(launch.RejectionArithmeticOverflow, "participant count overflows")
		}
	}
	payloadJSON, _ := json.Marshal(CommitmentAppliedPayload{
		Participant:    state.Participant.Key,
		Amount:         value,
		CommitTime:     at.Unix(),
		NewParticipant: newParticipant,
		Path:           path,
	})
	evt := command.NewEvent(cmd, eventType, entityTypeParticipant, state.Participant.Key.String(), payloadJSON, at)
	return evt, nil
}

func decideGraduatePool(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Launch.Initialized {
		return reject(launch.RejectionLaunchNotFound, "launch not found")
	}
	at := now().UTC()
	reason, rejection := launch.CheckGraduation(state.Launch, state.Pool.Totals(), at.Unix())
	if rejection != nil {
		return command.Reject(*rejection)
	}
	payloadJSON, _ := json.Marshal(PoolGraduatedPayload{
		TotalCommitted:    state.Pool.TotalCommitted,
		TotalParticipants: state.Pool.TotalParticipants,
		GraduationTime:    at.Unix(),
		Reason:            reason,
	})
	evt := command.NewEvent(cmd, EventTypePoolGraduated, entityTypePool, state.Pool.Key.String(), payloadJSON, at)
	return command.Accept(evt)
}

// decideCalculateAllocation divides by the launch totals, which are only
// authoritative once the launch is graduated.
func decideCalculateAllocation(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Launch.Initialized {
		return reject(launch.RejectionLaunchNotFound, "launch not found")
	}
	if !state.Launch.IsGraduated {
		return reject(launch.RejectionNotGraduated, "launch has not graduated")
	}
	if state.Participant.Allocated() {
		return reject(RejectionAllocationAlreadyCalculated, "allocation already calculated")
	}
	if state.Participant.Amount == 0 {
		return reject(RejectionNoCommitment, "participant has no commitment")
	}
	result, err := state.Allocation.Compute(allocation.Input{
		StartTime:      state.Launch.StartTime,
		EndTime:        state.Launch.EndTime,
		CommitTime:     state.Participant.CommitTime,
		Amount:         state.Participant.Amount,
		TokenSupply:    state.Launch.TokenSupply,
		TotalCommitted: state.Launch.TotalCommitted,
	})
	if err != nil {
		return reject(launch.RejectionArithmeticOverflow, "allocation overflows")
	}
	at := now().UTC()
	payloadJSON, _ := json.Marshal(AllocationPayload{
		Participant: state.Participant.Key,
		Weight:      result.Weight,
		Tokens:      result.Tokens,
		ComputedAt:  at.Unix(),
	})
	evt := command.NewEvent(cmd, EventTypeAllocationCalculated, entityTypeParticipant, state.Participant.Key.String(), payloadJSON, at)
	return command.Accept(evt)
}

func decideClaim(state State, cmd command.Command, now func() time.Time) command.Decision {
	if !state.Launch.Initialized {
		return reject(launch.RejectionLaunchNotFound, "launch not found")
	}
	if state.Participant.User.String() != cmd.ActorID {
		return reject(launch.RejectionUnauthorized, "only the participant may claim")
	}
	if !state.Launch.IsGraduated {
		return reject(launch.RejectionNotGraduated, "launch has not graduated")
	}
	if state.Participant.AllocatedTokens() == 0 {
		return reject(RejectionNoAllocation, "participant has no token allocation")
	}
	if state.Participant.Claimed {
		return reject(RejectionAlreadyClaimed, "tokens already claimed")
	}
	payloadJSON, _ := json.Marshal(ClaimPayload{
		Participant: state.Participant.Key,
		Tokens:      state.Participant.AllocatedTokens(),
	})
	evt := command.NewEvent(cmd, EventTypeClaimed, entityTypeParticipant, state.Participant.Key.String(), payloadJSON, now().UTC())
	return command.Accept(evt)
}
