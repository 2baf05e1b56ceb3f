package launchv1

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/protocol"
)

// LaunchFromState converts a launch record.
func LaunchFromState(state launch.State, phase launch.Phase) Launch {
	return Launch{
		Key:               state.Key,
		Creator:           state.Creator,
		Asset:             state.Asset,
		TokenSupply:       state.TokenSupply,
		StartTime:         state.StartTime,
		EndTime:           state.EndTime,
		GraduationTarget:  state.GraduationTarget,
		MinCommitment:     state.MinCommitment,
		MaxCommitment:     state.MaxCommitment,
		TotalCommitted:    state.TotalCommitted,
		TotalParticipants: state.TotalParticipants,
		IsGraduated:       state.IsGraduated,
		IsDelegated:       state.IsDelegated,
		GraduationTime:    state.GraduationTime,
		Phase:             string(phase),
	}
}

// PoolTotalsFromPool converts a readable pool.
func PoolTotalsFromPool(pool ledger.Pool) *PoolTotals {
	return &PoolTotals{
		TotalCommitted:    pool.TotalCommitted,
		TotalParticipants: pool.TotalParticipants,
		Graduated:         pool.Graduated,
		GraduationTime:    pool.GraduationTime,
	}
}

// CommitmentFromParticipant converts a readable participant.
func CommitmentFromParticipant(p ledger.Participant) *Commitment {
	c := &Commitment{
		User:       p.User,
		Amount:     p.Amount,
		CommitTime: p.CommitTime,
		Claimed:    p.Claimed,
	}
	if p.Allocation != nil {
		c.Allocation = &Allocation{
			Weight:     p.Allocation.Weight,
			Tokens:     p.Allocation.Tokens,
			ComputedAt: p.Allocation.ComputedAt,
		}
	}
	return c
}

func ownershipFrom(o protocol.Ownership) Ownership {
	return Ownership{Key: o.Key, Owner: string(o.Owner), ExecutorID: o.ExecutorID}
}

// PoolFromView converts a public pool view.
func PoolFromView(view protocol.PoolView) Pool {
	out := Pool{Ownership: ownershipFrom(view.Ownership)}
	if view.Pool != nil {
		out.Totals = PoolTotalsFromPool(*view.Pool)
	}
	return out
}

// ParticipantFromView converts a public participant view.
func ParticipantFromView(view protocol.ParticipantView) Participant {
	out := Participant{Ownership: ownershipFrom(view.Ownership)}
	if view.Participant != nil {
		out.Commitment = CommitmentFromParticipant(*view.Participant)
	}
	return out
}

// ParticipantFromState converts a participant the protocol just wrote.
func ParticipantFromState(p ledger.Participant) Participant {
	return Participant{
		Ownership:  Ownership{Key: p.Key, Owner: string(record.OwnerProtocol)},
		Commitment: CommitmentFromParticipant(p),
	}
}

// CustodyFromView converts a public custody view.
func CustodyFromView(view protocol.CustodyView) Custody {
	out := Custody{Ownership: ownershipFrom(view.Ownership)}
	if view.Custody != nil {
		out.User = view.Custody.User
		balance, committed := view.Custody.Balance, view.Custody.Committed
		out.Balance = &balance
		out.Committed = &committed
	}
	return out
}

// CustodyFromState converts a custody the protocol just wrote.
func CustodyFromState(c custody.Custody) Custody {
	balance, committed := c.Balance, c.Committed
	return Custody{
		Ownership: Ownership{Key: c.Key, Owner: string(record.OwnerProtocol)},
		User:      c.User,
		Balance:   &balance,
		Committed: &committed,
	}
}

// EventFromJournal converts a journal entry.
func EventFromJournal(evt event.Event) Event {
	return Event{
		Seq:        evt.Seq,
		Type:       string(evt.Type),
		Timestamp:  evt.Timestamp,
		ActorID:    evt.ActorID,
		RequestID:  evt.RequestID,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Payload:    evt.PayloadJSON,
		ChainHash:  evt.ChainHash,
		Signature:  evt.Signature,
	}
}

// AddressesFrom converts the derived keys of a launch.
func AddressesFrom(a protocol.Addresses) Addresses {
	return Addresses(a)
}
