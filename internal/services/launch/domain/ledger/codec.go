package ledger

import (
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
)

const (
	poolLayoutVersion        = 1
	poolLayoutSize           = 2*address.Size + 8*3 + 1
	participantLayoutVersion = 1
	participantLayoutSize    = 3*address.Size + 8*5 + 2
)

// EncodePool serializes a pool record body.
func EncodePool(pool Pool) []byte {
	return record.NewWriter(address.KindPool, poolLayoutVersion, poolLayoutSize).
		Key(pool.Key).
		Key(pool.Launch).
		U64(pool.TotalCommitted).
		U64(pool.TotalParticipants).
		I64(pool.GraduationTime).
		Bool(pool.Graduated).
		Bytes()
}

// DecodePool parses a pool record body.
func DecodePool(raw []byte) (Pool, error) {
	r, err := record.NewReader(address.KindPool, poolLayoutVersion, poolLayoutSize, raw)
	if err != nil {
		return Pool{}, err
	}
	pool := Pool{
		Key:               r.Key(),
		Launch:            r.Key(),
		TotalCommitted:    r.U64(),
		TotalParticipants: r.U64(),
		GraduationTime:    r.I64(),
		Graduated:         r.Bool(),
	}
	if err := r.Err(); err != nil {
		return Pool{}, err
	}
	return pool, nil
}

// ValidatePool checks the pool's internal consistency. Every counted
// participant committed at least one unit.
func ValidatePool(pool Pool) error {
	if pool.TotalParticipants > pool.TotalCommitted {
		return errors.New("pool counts more participants than committed units")
	}
	if pool.TotalCommitted > 0 && pool.TotalParticipants == 0 {
		return errors.New("pool has commitments but no participants")
	}
	if !pool.Graduated && pool.GraduationTime != 0 {
		return errors.New("ungraduated pool carries a graduation time")
	}
	return nil
}

// EncodeParticipant serializes a participant record body. The allocation is
// written behind a presence flag so a computed zero stays distinct from unset.
func EncodeParticipant(p Participant) []byte {
	var alloc Allocation
	if p.Allocation != nil {
		alloc = *p.Allocation
	}
	return record.NewWriter(address.KindParticipant, participantLayoutVersion, participantLayoutSize).
		Key(p.Key).
		Key(p.Launch).
		Key(p.User).
		U64(p.Amount).
		I64(p.CommitTime).
		Bool(p.Allocation != nil).
		U64(alloc.Weight).
		U64(alloc.Tokens).
		I64(alloc.ComputedAt).
		Bool(p.Claimed).
		Bytes()
}

// DecodeParticipant parses a participant record body.
func DecodeParticipant(raw []byte) (Participant, error) {
	r, err := record.NewReader(address.KindParticipant, participantLayoutVersion, participantLayoutSize, raw)
	if err != nil {
		return Participant{}, err
	}
	p := Participant{
		Key:        r.Key(),
		Launch:     r.Key(),
		User:       r.Key(),
		Amount:     r.U64(),
		CommitTime: r.I64(),
	}
	allocated := r.Bool()
	alloc := Allocation{
		Weight:     r.U64(),
		Tokens:     r.U64(),
		ComputedAt: r.I64(),
	}
	p.Claimed = r.Bool()
	if err := r.Err(); err != nil {
		return Participant{}, err
	}
	if allocated {
		p.Allocation = &alloc
	}
	return p, nil
}
