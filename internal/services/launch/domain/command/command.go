package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrLaunchIDRequired indicates a missing launch id.
	ErrLaunchIDRequired = errors.New("launch id is required")
	// ErrTypeRequired indicates a missing command type.
	ErrTypeRequired = errors.New("command type is required")
	// ErrTypeUnknown indicates an unregistered command type.
	ErrTypeUnknown = errors.New("command type is not registered")
	// ErrActorIDRequired indicates a missing actor id.
	ErrActorIDRequired = errors.New("actor id is required")
	// ErrVenueMismatch indicates a command submitted to the wrong venue.
	ErrVenueMismatch = errors.New("command is not accepted in this venue")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("payload json must be valid")
)

// Type identifies the command type string.
type Type string

// Venue identifies where a command executes.
type Venue string

const (
	// VenuePublic runs against the public ledger.
	VenuePublic Venue = "public"
	// VenuePrivate runs inside the private executor.
	VenuePrivate Venue = "private"
)

// Command captures the canonical command envelope.
type Command struct {
	LaunchID    string
	Type        Type
	ActorID     string
	RequestID   string
	Venue       Venue
	PayloadJSON []byte
}

// Definition registers metadata for a command type.
type Definition struct {
	Type            Type
	Venue           Venue
	ValidatePayload PayloadValidator
}

// PayloadValidator validates a payload JSON document.
type PayloadValidator func(json.RawMessage) error

// Registry stores command definitions and validates commands.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new command type definition to the registry.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	switch def.Venue {
	case VenuePublic, VenuePrivate:
	default:
		return fmt.Errorf("venue must be public or private")
	}
	if r.definitions == nil {
		r.definitions = make(map[Type]Definition)
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("command type already registered: %s", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// Definition returns the registered definition for a command type.
func (r *Registry) Definition(t Type) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[t]
	return def, ok
}

// ValidateForDecision validates and normalizes a command before decision
// handling. The command's venue must match the registered venue.
func (r *Registry) ValidateForDecision(cmd Command) (Command, error) {
	cmd.LaunchID = strings.TrimSpace(cmd.LaunchID)
	if cmd.LaunchID == "" {
		return Command{}, ErrLaunchIDRequired
	}
	cmd.Type = Type(strings.TrimSpace(string(cmd.Type)))
	if cmd.Type == "" {
		return Command{}, ErrTypeRequired
	}
	def, ok := r.Definition(cmd.Type)
	if !ok {
		return Command{}, ErrTypeUnknown
	}
	cmd.ActorID = strings.TrimSpace(cmd.ActorID)
	if cmd.ActorID == "" {
		return Command{}, ErrActorIDRequired
	}
	if cmd.Venue == "" {
		cmd.Venue = def.Venue
	}
	if cmd.Venue != def.Venue {
		return Command{}, fmt.Errorf("%w: %s runs in %s venue", ErrVenueMismatch, cmd.Type, def.Venue)
	}
	if len(cmd.PayloadJSON) > 0 && !json.Valid(cmd.PayloadJSON) {
		return Command{}, ErrPayloadInvalid
	}
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(json.RawMessage(cmd.PayloadJSON)); err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
		}
	}
	return cmd, nil
}

// ListDefinitions returns all registered definitions sorted by type.
func (r *Registry) ListDefinitions() []Definition {
	if r == nil {
		return nil
	}
	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })
	return defs
}

// NewPayload marshals a payload into a command of the given type.
func NewPayload(launchID string, t Type, actorID string, payload any) (Command, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Command{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Command{LaunchID: launchID, Type: t, ActorID: actorID, PayloadJSON: raw}, nil
}
