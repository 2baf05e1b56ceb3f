package launch

import (
	"encoding/json"
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

const (
	CommandTypeInitialize   command.Type = "launch.initialize"
	CommandTypeMarkDelegate command.Type = "launch.mark_delegated"
	CommandTypeGraduate     command.Type = "launch.graduate"
	CommandTypeFinalize     command.Type = "launch.finalize_graduation"
	CommandTypeWithdraw     command.Type = "vault.withdraw"
	CommandTypeDeposit      command.Type = "vault.deposit"

	EventTypeInitialized event.Type = "launch.initialized"
	EventTypeDelegated   event.Type = "launch.delegated"
	EventTypeGraduated   event.Type = "launch.graduated"
	EventTypeFinalized   event.Type = "launch.finalized"
	EventTypeWithdrawn   event.Type = "vault.withdrawn"
	EventTypeDeposited   event.Type = "vault.deposited"
)

// RegisterCommands registers launch commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	for _, def := range []command.Definition{
		{Type: CommandTypeInitialize, Venue: command.VenuePublic, ValidatePayload: validateInitializePayload},
		{Type: CommandTypeMarkDelegate, Venue: command.VenuePublic},
		{Type: CommandTypeGraduate, Venue: command.VenuePublic},
		{Type: CommandTypeFinalize, Venue: command.VenuePublic},
		{Type: CommandTypeWithdraw, Venue: command.VenuePublic},
		{Type: CommandTypeDeposit, Venue: command.VenuePublic, ValidatePayload: validateDepositPayload},
	} {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers launch events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	for _, t := range EmittableEventTypes() {
		if err := registry.Register(event.Definition{Type: t, Visibility: event.VisibilityPublic}); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types the launch decider can emit.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeInitialized,
		EventTypeDelegated,
		EventTypeGraduated,
		EventTypeFinalized,
		EventTypeWithdrawn,
		EventTypeDeposited,
	}
}

func validateInitializePayload(raw json.RawMessage) error {
	var payload InitializePayload
	return json.Unmarshal(raw, &payload)
}

func validateDepositPayload(raw json.RawMessage) error {
	var payload DepositPayload
	return json.Unmarshal(raw, &payload)
}
