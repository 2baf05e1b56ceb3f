package ledger

import "github.com/vestige-labs/vestige/internal/services/launch/domain/address"

// CommitPayload captures the payload for every commitment command.
type CommitPayload struct {
	Amount uint64 `json:"amount"`
}

// CommitmentAppliedPayload captures ledger commitment events.
type CommitmentAppliedPayload struct {
	Participant    address.Key `json:"participant"`
	Amount         uint64      `json:"amount"`
	CommitTime     int64       `json:"commit_time"`
	NewParticipant bool        `json:"new_participant"`
	Path           string      `json:"path"`
}

// PoolGraduatedPayload captures pool.graduated events.
type PoolGraduatedPayload struct {
	TotalCommitted    uint64 `json:"total_committed"`
	TotalParticipants uint64 `json:"total_participants"`
	GraduationTime    int64  `json:"graduation_time"`
	Reason            string `json:"reason"`
}

// AllocationPayload captures participant.allocation_calculated events.
type AllocationPayload struct {
	Participant address.Key `json:"participant"`
	Weight      uint64      `json:"weight"`
	Tokens      uint64      `json:"tokens"`
	ComputedAt  int64       `json:"computed_at"`
}

// ClaimPayload captures participant.claimed events.
type ClaimPayload struct {
	Participant address.Key `json:"participant"`
	Tokens      uint64      `json:"tokens"`
}
