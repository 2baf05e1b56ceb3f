package custody

import (
	"encoding/json"
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

const (
	CommandTypeFund          command.Type = "custody.fund"
	CommandTypePrivateCommit command.Type = "custody.private_commit"
	CommandTypeSweep         command.Type = "custody.sweep"
	CommandTypeReclaim       command.Type = "custody.reclaim"

	EventTypeFunded    event.Type = "custody.funded"
	EventTypeDebited   event.Type = "custody.debited"
	EventTypeSwept     event.Type = "custody.swept"
	EventTypeReclaimed event.Type = "custody.reclaimed"
)

// RegisterCommands registers custody commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	for _, def := range []command.Definition{
		{Type: CommandTypeFund, Venue: command.VenuePublic, ValidatePayload: validateAmountPayload},
		{Type: CommandTypePrivateCommit, Venue: command.VenuePrivate, ValidatePayload: validateAmountPayload},
		{Type: CommandTypeSweep, Venue: command.VenuePublic},
		{Type: CommandTypeReclaim, Venue: command.VenuePublic},
	} {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers custody events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	for _, def := range []event.Definition{
		{Type: EventTypeFunded, Visibility: event.VisibilityPublic},
		{Type: EventTypeDebited, Visibility: event.VisibilityPrivate},
		{Type: EventTypeSwept, Visibility: event.VisibilityPublic},
		{Type: EventTypeReclaimed, Visibility: event.VisibilityPublic},
	} {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func validateAmountPayload(raw json.RawMessage) error {
	var payload AmountPayload
	return json.Unmarshal(raw, &payload)
}
