package ledger

import "github.com/vestige-labs/vestige/internal/services/launch/domain/command"

// Rejection codes owned by the ledger. Launch-level codes come from the
// launch package.
const (
	RejectionNoCommitment                = "NO_COMMITMENT"
	RejectionNoAllocation                = "NO_ALLOCATION"
	RejectionAllocationAlreadyCalculated = "ALLOCATION_ALREADY_CALCULATED"
	RejectionAlreadyClaimed              = "ALREADY_CLAIMED"
)

func reject(code, message string) command.Decision {
	return command.Reject(command.Rejection{Code: code, Message: message})
}
