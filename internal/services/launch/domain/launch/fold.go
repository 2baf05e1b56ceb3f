package launch

import (
	"encoding/json"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

// Fold applies an event to launch state.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case EventTypeInitialized:
		var payload InitializePayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state = State{
			Initialized:      true,
			Key:              payload.Launch,
			Creator:          payload.Creator,
			Asset:            payload.Asset,
			TokenSupply:      payload.TokenSupply,
			StartTime:        payload.StartTime,
			EndTime:          payload.EndTime,
			GraduationTarget: payload.GraduationTarget,
			MinCommitment:    payload.MinCommitment,
			MaxCommitment:    payload.MaxCommitment,
		}
	case EventTypeDelegated:
		state.IsDelegated = true
	case EventTypeGraduated:
		var payload GraduatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.TotalCommitted = payload.TotalCommitted
		state.TotalParticipants = payload.TotalParticipants
		state.GraduationTime = payload.GraduationTime
		state.IsGraduated = true
	case EventTypeFinalized:
		var payload GraduatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.TotalCommitted = payload.TotalCommitted
		state.TotalParticipants = payload.TotalParticipants
		state.GraduationTime = payload.GraduationTime
		state.IsGraduated = true
		state.IsDelegated = false
	}
	return state
}
