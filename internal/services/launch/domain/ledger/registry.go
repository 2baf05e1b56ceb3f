package ledger

import (
	"encoding/json"
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

// Commitment paths recorded on commitment events.
const (
	PathDirect  = "direct"
	PathDeposit = "deposit"
	PathCustody = "custody"
)

const (
	CommandTypeCommit              command.Type = "ledger.commit"
	CommandTypeRecordCommit        command.Type = "ledger.record_commit"
	CommandTypePrivateRecordCommit command.Type = "ledger.private_record_commit"
	CommandTypeGraduatePool        command.Type = "ledger.graduate_pool"
	CommandTypeCalculateAllocation command.Type = "ledger.calculate_allocation"
	CommandTypeClaim               command.Type = "ledger.claim"

	EventTypeCommitmentApplied        event.Type = "ledger.commitment_applied"
	EventTypePrivateCommitmentApplied event.Type = "ledger.private_commitment_applied"
	EventTypePoolGraduated            event.Type = "pool.graduated"
	EventTypeAllocationCalculated     event.Type = "participant.allocation_calculated"
	EventTypeClaimed                  event.Type = "participant.claimed"
)

// RegisterCommands registers ledger commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	for _, def := range []command.Definition{
		{Type: CommandTypeCommit, Venue: command.VenuePublic, ValidatePayload: ValidateCommitPayload},
		{Type: CommandTypeRecordCommit, Venue: command.VenuePublic, ValidatePayload: ValidateCommitPayload},
		{Type: CommandTypePrivateRecordCommit, Venue: command.VenuePrivate, ValidatePayload: ValidateCommitPayload},
		{Type: CommandTypeGraduatePool, Venue: command.VenuePrivate},
		{Type: CommandTypeCalculateAllocation, Venue: command.VenuePublic},
		{Type: CommandTypeClaim, Venue: command.VenuePublic},
	} {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers ledger events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	for _, def := range []event.Definition{
		{Type: EventTypeCommitmentApplied, Visibility: event.VisibilityPublic},
		{Type: EventTypePrivateCommitmentApplied, Visibility: event.VisibilityPrivate},
		{Type: EventTypePoolGraduated, Visibility: event.VisibilityPrivate},
		{Type: EventTypeAllocationCalculated, Visibility: event.VisibilityPublic},
		{Type: EventTypeClaimed, Visibility: event.VisibilityPublic},
	} {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCommitPayload checks the payload decodes. Amount bounds are a
// domain rejection, not a payload error.
func ValidateCommitPayload(raw json.RawMessage) error {
	var payload CommitPayload
	return json.Unmarshal(raw, &payload)
}
