package launchv1

import (
	"encoding/json"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// Launch is the wire form of a launch record.
type Launch struct {
	Key               address.Key `json:"key"`
	Creator           address.Key `json:"creator"`
	Asset             address.Key `json:"asset"`
	TokenSupply       uint64      `json:"token_supply"`
	StartTime         int64       `json:"start_time"`
	EndTime           int64       `json:"end_time"`
	GraduationTarget  uint64      `json:"graduation_target"`
	MinCommitment     uint64      `json:"min_commitment"`
	MaxCommitment     uint64      `json:"max_commitment"`
	TotalCommitted    uint64      `json:"total_committed"`
	TotalParticipants uint64      `json:"total_participants"`
	IsGraduated       bool        `json:"is_graduated"`
	IsDelegated       bool        `json:"is_delegated"`
	GraduationTime    int64       `json:"graduation_time,omitempty"`
	Phase             string      `json:"phase,omitempty"`
}

// Ownership is the owner tag of a public record.
type Ownership struct {
	Key        address.Key `json:"key"`
	Owner      string      `json:"owner"`
	ExecutorID string      `json:"executor_id,omitempty"`
}

// PoolTotals is the readable part of a pool.
type PoolTotals struct {
	TotalCommitted    uint64 `json:"total_committed"`
	TotalParticipants uint64 `json:"total_participants"`
	Graduated         bool   `json:"graduated"`
	GraduationTime    int64  `json:"graduation_time,omitempty"`
}

// Pool is a pool's owner tag and, when the protocol can read it, its
// totals.
type Pool struct {
	Ownership
	Totals *PoolTotals `json:"totals,omitempty"`
}

// Allocation is a computed token allocation.
type Allocation struct {
	Weight     uint64 `json:"weight"`
	Tokens     uint64 `json:"tokens"`
	ComputedAt int64  `json:"computed_at"`
}

// Commitment is the readable part of a participant.
type Commitment struct {
	User       address.Key `json:"user"`
	Amount     uint64      `json:"amount"`
	CommitTime int64       `json:"commit_time,omitempty"`
	Allocation *Allocation `json:"allocation,omitempty"`
	Claimed    bool        `json:"claimed"`
}

// Participant is a participant's owner tag and, when readable, its
// commitment.
type Participant struct {
	Ownership
	Commitment *Commitment `json:"commitment,omitempty"`
}

// Custody is a custody's owner tag and, when readable, its balance and
// unswept committed amount.
type Custody struct {
	Ownership
	User      address.Key `json:"user"`
	Balance   *uint64     `json:"balance,omitempty"`
	Committed *uint64     `json:"committed,omitempty"`
}

// Event is the wire form of a journal entry.
type Event struct {
	Seq        uint64          `json:"seq"`
	Type       string          `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	ActorID    string          `json:"actor_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ChainHash  string          `json:"chain_hash"`
	Signature  string          `json:"signature,omitempty"`
}

// Addresses lists the derived keys of a launch.
type Addresses struct {
	Launch     address.Key `json:"launch"`
	Pool       address.Key `json:"pool"`
	Vault      address.Key `json:"vault"`
	TokenVault address.Key `json:"token_vault"`
	Authority  address.Key `json:"authority"`
	Mint       address.Key `json:"mint"`
}

type InitializeLaunchRequest struct {
	Asset            address.Key `json:"asset"`
	TokenSupply      uint64      `json:"token_supply"`
	StartTime        int64       `json:"start_time"`
	EndTime          int64       `json:"end_time"`
	GraduationTarget uint64      `json:"graduation_target"`
	MinCommitment    uint64      `json:"min_commitment"`
	MaxCommitment    uint64      `json:"max_commitment"`
}

type LaunchResponse struct {
	Launch Launch `json:"launch"`
}

// LaunchRequest names a launch.
type LaunchRequest struct {
	Launch address.Key `json:"launch"`
}

// DelegateRequest names a launch and, optionally, the executor identity
// that must accept the delegation.
type DelegateRequest struct {
	Launch   address.Key `json:"launch"`
	Executor string      `json:"executor,omitempty"`
}

// AmountRequest carries a value for a launch.
type AmountRequest struct {
	Launch address.Key `json:"launch"`
	Amount uint64      `json:"amount"`
}

// UserRequest names a user of a launch.
type UserRequest struct {
	Launch address.Key `json:"launch"`
	User   address.Key `json:"user"`
}

type UndelegateRequest struct {
	Launch address.Key `json:"launch"`
	Record address.Key `json:"record"`
}

type ParticipantResponse struct {
	Participant Participant `json:"participant"`
}

type CustodyResponse struct {
	Custody Custody `json:"custody"`
}

type PoolResponse struct {
	Pool Pool `json:"pool"`
}

// AmountResponse reports the value an operation moved.
type AmountResponse struct {
	Amount uint64 `json:"amount"`
}

type Empty struct{}

type FaucetRequest struct {
	Wallet address.Key `json:"wallet"`
	Amount uint64      `json:"amount"`
}

type BalanceRequest struct {
	Account address.Key `json:"account"`
	Asset   address.Key `json:"asset"`
}

type BalanceResponse struct {
	Balance uint64 `json:"balance"`
}

type ListEventsRequest struct {
	Launch   address.Key `json:"launch"`
	AfterSeq uint64      `json:"after_seq,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}

type ListEventsResponse struct {
	Events []Event `json:"events"`
}

type LaunchKeyRequest struct {
	Creator address.Key `json:"creator"`
	Asset   address.Key `json:"asset"`
}

type AddressesResponse struct {
	Addresses Addresses `json:"addresses"`
}

// PrivateRecordRequest reads a delegated record as the calling actor.
type PrivateRecordRequest struct {
	Record address.Key `json:"record"`
}

type PrivateRecordResponse struct {
	Ownership
	Kind        string      `json:"kind"`
	Pool        *PoolTotals `json:"pool,omitempty"`
	Participant *Commitment `json:"participant,omitempty"`
	Custody     *uint64     `json:"custody_balance,omitempty"`
}

type ExecutorStatsResponse struct {
	Identity      string `json:"identity"`
	Held          int    `json:"held"`
	Delegations   int64  `json:"delegations"`
	Undelegations int64  `json:"undelegations"`
	Commits       int64  `json:"commits"`
	Rejections    int64  `json:"rejections"`
}
