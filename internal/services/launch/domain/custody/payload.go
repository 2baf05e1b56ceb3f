package custody

import "github.com/vestige-labs/vestige/internal/services/launch/domain/address"

// AmountPayload captures custody.fund and custody.private_commit commands
// plus custody.funded, custody.debited, and custody.reclaimed events.
type AmountPayload struct {
	Amount uint64 `json:"amount"`
}

// SweptPayload captures custody.swept events.
type SweptPayload struct {
	Amount      uint64      `json:"amount"`
	Participant address.Key `json:"participant"`
}
