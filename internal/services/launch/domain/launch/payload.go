package launch

import "github.com/vestige-labs/vestige/internal/services/launch/domain/address"

// InitializePayload captures the payload for launch.initialize commands and
// launch.initialized events.
type InitializePayload struct {
	Launch           address.Key `json:"launch"`
	Creator          address.Key `json:"creator"`
	Asset            address.Key `json:"asset"`
	TokenSupply      uint64      `json:"token_supply"`
	StartTime        int64       `json:"start_time"`
	EndTime          int64       `json:"end_time"`
	GraduationTarget uint64      `json:"graduation_target"`
	MinCommitment    uint64      `json:"min_commitment"`
	MaxCommitment    uint64      `json:"max_commitment"`
}

// GraduatedPayload captures launch.graduated and launch.finalized events.
type GraduatedPayload struct {
	TotalCommitted    uint64 `json:"total_committed"`
	TotalParticipants uint64 `json:"total_participants"`
	GraduationTime    int64  `json:"graduation_time"`
	Reason            string `json:"reason,omitempty"`
}

// WithdrawPayload captures vault.withdraw commands and vault.withdrawn events.
type WithdrawPayload struct {
	Amount    uint64      `json:"amount,omitempty"`
	Recipient address.Key `json:"recipient,omitempty"`
}

// DepositPayload captures vault.deposit commands and vault.deposited events.
type DepositPayload struct {
	Amount    uint64      `json:"amount"`
	Depositor address.Key `json:"depositor,omitempty"`
}
