package ledger

import (
	"encoding/json"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

// FoldPool applies an event to pool state. Deciders have already checked the
// additions, so folds never see an overflowing event.
func FoldPool(pool Pool, evt event.Event) Pool {
	switch evt.Type {
	case EventTypeCommitmentApplied, EventTypePrivateCommitmentApplied:
		var payload CommitmentAppliedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		pool.TotalCommitted += payload.Amount
		if payload.NewParticipant {
			pool.TotalParticipants++
		}
	case EventTypePoolGraduated:
		var payload PoolGraduatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		pool.Graduated = true
		pool.GraduationTime = payload.GraduationTime
	}
	return pool
}

// FoldParticipant applies an event to participant state.
func FoldParticipant(participant Participant, evt event.Event) Participant {
	switch evt.Type {
	case EventTypeCommitmentApplied, EventTypePrivateCommitmentApplied:
		var payload CommitmentAppliedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		participant.Amount += payload.Amount
		participant.CommitTime = payload.CommitTime
	case EventTypeAllocationCalculated:
		var payload AllocationPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		participant.Allocation = &Allocation{
			Weight:     payload.Weight,
			Tokens:     payload.Tokens,
			ComputedAt: payload.ComputedAt,
		}
	case EventTypeClaimed:
		participant.Claimed = true
	}
	return participant
}
