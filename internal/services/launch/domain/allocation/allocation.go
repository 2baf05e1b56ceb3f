// Package allocation computes time-weighted, pro-rata token allocations.
//
// All ratios are fixed-point basis points (10000 = 1.0). Products go through
// a 128-bit intermediate so large supplies and commitments never overflow
// before division.
package allocation

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
)

// BasisPoints is the fixed-point unit.
const BasisPoints = 10000

// DefaultEarlyBonusAlpha gives the earliest committer a 50% bonus.
const DefaultEarlyBonusAlpha = 50

// Params configures the bonus curve.
type Params struct {
	// EarlyBonusAlpha is the earliest committer's bonus in percent.
	EarlyBonusAlpha uint64
}

// DefaultParams returns the default bonus curve.
func DefaultParams() Params {
	return Params{EarlyBonusAlpha: DefaultEarlyBonusAlpha}
}

// Input is everything one participant's allocation depends on.
type Input struct {
	StartTime      int64
	EndTime        int64
	CommitTime     int64
	Amount         uint64
	TokenSupply    uint64
	TotalCommitted uint64
}

// Result breaks the computation into its intermediate values.
type Result struct {
	TimeRatio  uint64
	Weight     uint64
	BaseTokens uint64
	Tokens     uint64
}

// TimeRatio places commitTime in the launch window: 0 at start, 10000 at end.
func TimeRatio(start, end, commitTime int64) uint64 {
	if end <= start {
		return 0
	}
	duration := uint64(end - start)
	var elapsed uint64
	if commitTime > start {
		elapsed = uint64(commitTime - start)
	}
	if elapsed > duration {
		elapsed = duration
	}
	ratio, err := amount.MulDiv(elapsed, BasisPoints, duration)
	if err != nil {
		return BasisPoints
	}
	return ratio
}

// Weight returns the allocation multiplier in basis points. The earliest
// committer receives 10000 + alpha*100; the latest receives exactly 10000.
func (p Params) Weight(timeRatio uint64) uint64 {
	earlyBonus := p.EarlyBonusAlpha * BasisPoints / 100
	decay, err := amount.MulDiv(earlyBonus, timeRatio, BasisPoints)
	if err != nil {
		decay = earlyBonus
	}
	bonus := amount.SaturatingSub(earlyBonus, decay)
	return BasisPoints + bonus
}

// Compute returns a participant's allocation. A zero TotalCommitted yields a
// zero allocation rather than an error.
func (p Params) Compute(in Input) (Result, error) {
	ratio := TimeRatio(in.StartTime, in.EndTime, in.CommitTime)
	weight := p.Weight(ratio)
	result := Result{TimeRatio: ratio, Weight: weight}
	if in.TotalCommitted == 0 {
		return result, nil
	}
	base, err := amount.MulDiv(in.Amount, in.TokenSupply, in.TotalCommitted)
	if err != nil {
		return Result{}, err
	}
	tokens, err := amount.MulDiv(base, weight, BasisPoints)
	if err != nil {
		return Result{}, err
	}
	result.BaseTokens = base
	result.Tokens = tokens
	return result, nil
}
