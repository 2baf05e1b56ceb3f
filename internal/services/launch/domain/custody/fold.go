package custody

import (
	"encoding/json"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/amount"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

// Fold applies an event to custody state. A private commit moves value from
// Balance to Committed; a sweep clears what it moved out of Committed.
func Fold(custody Custody, evt event.Event) Custody {
	switch evt.Type {
	case EventTypeFunded:
		var payload AmountPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		custody.Balance += payload.Amount
	case EventTypeDebited:
		var payload AmountPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		custody.Balance -= payload.Amount
		custody.Committed += payload.Amount
	case EventTypeSwept:
		var payload SweptPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		custody.Committed = amount.SaturatingSub(custody.Committed, payload.Amount)
	case EventTypeReclaimed:
		var payload AmountPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		custody.Balance = amount.SaturatingSub(custody.Balance, payload.Amount)
	}
	return custody
}
