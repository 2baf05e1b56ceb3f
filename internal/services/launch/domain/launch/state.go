package launch

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// State captures the launch record.
//
// TotalCommitted and TotalParticipants mirror the pool and are only
// authoritative once IsGraduated is set.
type State struct {
	Initialized       bool
	Key               address.Key
	Creator           address.Key
	Asset             address.Key
	TokenSupply       uint64
	StartTime         int64
	EndTime           int64
	GraduationTarget  uint64
	MinCommitment     uint64
	MaxCommitment     uint64
	TotalCommitted    uint64
	TotalParticipants uint64
	IsGraduated       bool
	IsDelegated       bool
	GraduationTime    int64
}

// PoolTotals is the slice of pool state the lifecycle reads.
type PoolTotals struct {
	TotalCommitted    uint64
	TotalParticipants uint64
	Graduated         bool
	GraduationTime    int64
}

// Phase is the derived lifecycle phase of a launch.
type Phase string

const (
	PhaseOpen      Phase = "open"
	PhaseDelegated Phase = "delegated"
	PhaseGraduated Phase = "graduated"
	PhaseFinalized Phase = "finalized"
)

// DerivePhase combines launch and pool flags into a phase.
//
// The public path moves Open -> Finalized in one graduate step. The delegated
// path moves Open -> Delegated -> Graduated (pool graduated privately) ->
// Finalized (totals copied onto the launch).
func DerivePhase(state State, pool PoolTotals) Phase {
	switch {
	case state.IsGraduated:
		return PhaseFinalized
	case pool.Graduated:
		return PhaseGraduated
	case state.IsDelegated:
		return PhaseDelegated
	default:
		return PhaseOpen
	}
}
