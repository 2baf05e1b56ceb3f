package delegation

import (
	"encoding/json"
	"errors"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

const (
	CommandTypeDelegate command.Type = "delegation.delegate"
	CommandTypePublish  command.Type = "delegation.publish"
	CommandTypeSettle   command.Type = "delegation.settle"

	EventTypeDelegated event.Type = "delegation.delegated"
	EventTypePublished event.Type = "delegation.published"
	EventTypeSettled   event.Type = "delegation.settled"
)

// RecordPayload captures every delegation command and event.
type RecordPayload struct {
	Record     address.Key  `json:"record"`
	Kind       address.Kind `json:"kind"`
	ExecutorID string       `json:"executor_id,omitempty"`
}

// RegisterCommands registers delegation commands with the shared registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	for _, t := range []command.Type{CommandTypeDelegate, CommandTypePublish, CommandTypeSettle} {
		if err := registry.Register(command.Definition{Type: t, Venue: command.VenuePublic, ValidatePayload: validateRecordPayload}); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers delegation events with the shared registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	for _, t := range []event.Type{EventTypeDelegated, EventTypePublished, EventTypeSettled} {
		if err := registry.Register(event.Definition{Type: t, Visibility: event.VisibilityPublic}); err != nil {
			return err
		}
	}
	return nil
}

func validateRecordPayload(raw json.RawMessage) error {
	var payload RecordPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.Record.IsZero() {
		return errors.New("record key is required")
	}
	return nil
}
