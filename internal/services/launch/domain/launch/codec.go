package launch

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

const (
	layoutVersion = 1
	layoutSize    = 3*address.Size + 8*9 + 2
)

// Encode serializes the launch record body.
func Encode(state State) []byte {
	return record.NewWriter(address.KindLaunch, layoutVersion, layoutSize).
		Key(state.Key).
		Key(state.Creator).
		Key(state.Asset).
		U64(state.TokenSupply).
		I64(state.StartTime).
		I64(state.EndTime).
		U64(state.GraduationTarget).
		U64(state.MinCommitment).
		U64(state.MaxCommitment).
		U64(state.TotalCommitted).
		U64(state.TotalParticipants).
		I64(state.GraduationTime).
		Bool(state.IsGraduated).
		Bool(state.IsDelegated).
		Bytes()
}

// Decode parses a launch record body.
func Decode(raw []byte) (State, error) {
	r, err := record.NewReader(address.KindLaunch, layoutVersion, layoutSize, raw)
	if err != nil {
		return State{}, err
	}
	state := State{
		Initialized:       true,
		Key:               r.Key(),
		Creator:           r.Key(),
		Asset:             r.Key(),
		TokenSupply:       r.U64(),
		StartTime:         r.I64(),
		EndTime:           r.I64(),
		GraduationTarget:  r.U64(),
		MinCommitment:     r.U64(),
		MaxCommitment:     r.U64(),
		TotalCommitted:    r.U64(),
		TotalParticipants: r.U64(),
		GraduationTime:    r.I64(),
		IsGraduated:       r.Bool(),
		IsDelegated:       r.Bool(),
	}
	if err := r.Err(); err != nil {
		return State{}, err
	}
	return state, nil
}
