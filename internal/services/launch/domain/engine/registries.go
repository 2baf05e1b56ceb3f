// Package engine assembles the command and event registries every venue
// validates against.
package engine

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/command"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/custody"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/delegation"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
)

// Registries bundles the command and event registries.
type Registries struct {
	Commands *command.Registry
	Events   *event.Registry
}

// BuildRegistries registers every domain's contracts.
func BuildRegistries() (Registries, error) {
	commandRegistry := command.NewRegistry()
	eventRegistry := event.NewRegistry()

	for _, register := range []func(*command.Registry) error{
		launch.RegisterCommands,
		ledger.RegisterCommands,
		custody.RegisterCommands,
		delegation.RegisterCommands,
	} {
		if err := register(commandRegistry); err != nil {
			return Registries{}, err
		}
	}
	for _, register := range []func(*event.Registry) error{
		launch.RegisterEvents,
		ledger.RegisterEvents,
		custody.RegisterEvents,
		delegation.RegisterEvents,
	} {
		if err := register(eventRegistry); err != nil {
			return Registries{}, err
		}
	}
	return Registries{Commands: commandRegistry, Events: eventRegistry}, nil
}

// MustBuildRegistries panics when registration fails. Registrations are
// static, so a failure is a programming error.
func MustBuildRegistries() Registries {
	registries, err := BuildRegistries()
	if err != nil {
		panic(err)
	}
	return registries
}
