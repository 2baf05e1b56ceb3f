package ledger

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
)

// Pool is the mutable aggregate accumulator of a launch.
type Pool struct {
	Key               address.Key
	Launch            address.Key
	TotalCommitted    uint64
	TotalParticipants uint64
	Graduated         bool
	GraduationTime    int64
}

// Totals exposes the pool to the lifecycle gate.
func (p Pool) Totals() launch.PoolTotals {
	return launch.PoolTotals{
		TotalCommitted:    p.TotalCommitted,
		TotalParticipants: p.TotalParticipants,
		Graduated:         p.Graduated,
		GraduationTime:    p.GraduationTime,
	}
}

// Allocation is a computed token allocation. A participant without one has
// not been allocated yet; a zero Tokens value is a legitimate result.
type Allocation struct {
	Weight     uint64
	Tokens     uint64
	ComputedAt int64
}

// Participant is the per-user commitment record.
type Participant struct {
	Key        address.Key
	Launch     address.Key
	User       address.Key
	Amount     uint64
	CommitTime int64
	Allocation *Allocation
	Claimed    bool
}

// Allocated reports whether the allocation has been computed.
func (p Participant) Allocated() bool {
	return p.Allocation != nil
}

// AllocatedTokens returns the allocated token count, or zero when unset.
func (p Participant) AllocatedTokens() uint64 {
	if p.Allocation == nil {
		return 0
	}
	return p.Allocation.Tokens
}
