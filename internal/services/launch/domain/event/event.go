package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type identifies the type of an event.
type Type string

// Visibility declares which journal may record an event type.
type Visibility string

const (
	// VisibilityPublic events may be written to the public journal.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate events stay inside the private executor.
	VisibilityPrivate Visibility = "private"
)

var (
	// ErrTypeRequired indicates a missing event type.
	ErrTypeRequired = errors.New("event type is required")
	// ErrTypeUnknown indicates an unregistered event type.
	ErrTypeUnknown = errors.New("event type is not registered")
	// ErrLaunchIDRequired indicates a missing launch id.
	ErrLaunchIDRequired = errors.New("launch id is required")
	// ErrPrivateEvent indicates a private event routed to a public journal.
	ErrPrivateEvent = errors.New("private event cannot be appended to a public journal")
	// ErrPayloadInvalid indicates malformed payload JSON.
	ErrPayloadInvalid = errors.New("event payload json must be valid")
)

// Event represents an immutable journal entry.
type Event struct {
	// LaunchID is the launch this event belongs to.
	LaunchID string
	// Seq is the sequence number within the launch journal (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Hash is the content hash of the envelope. Assigned by storage on append.
	Hash string
	// PrevHash is the previous event's chain hash (empty for the first event).
	PrevHash string
	// ChainHash links this event to its predecessor.
	ChainHash string
	// SignatureKeyID identifies the HMAC key used to sign the chain hash.
	SignatureKeyID string
	// Signature is the HMAC signature of the chain hash.
	Signature   string
	Timestamp   time.Time
	Type        Type
	RequestID   string
	ActorID     string
	EntityType  string
	EntityID    string
	PayloadJSON []byte
}

// Domain returns the prefix of the event type (e.g. "launch", "ledger").
func (t Type) Domain() string {
	if idx := strings.IndexByte(string(t), '.'); idx > 0 {
		return string(t[:idx])
	}
	return string(t)
}

// Definition registers metadata for an event type.
type Definition struct {
	Type       Type
	Visibility Visibility
}

// Registry stores event definitions.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds an event definition.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Type = Type(strings.TrimSpace(string(def.Type)))
	if def.Type == "" {
		return ErrTypeRequired
	}
	switch def.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return fmt.Errorf("visibility must be public or private")
	}
	if r.definitions == nil {
		r.definitions = make(map[Type]Definition)
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("event type already registered: %s", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// Definition returns the definition for an event type.
func (r *Registry) Definition(t Type) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[t]
	return def, ok
}

// Types returns registered event types in sorted order.
func (r *Registry) Types() []Type {
	if r == nil {
		return nil
	}
	types := make([]Type, 0, len(r.definitions))
	for t := range r.definitions {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ValidateForAppend normalizes an event and checks it may be journaled.
// Public journals pass public=true and refuse private events.
func (r *Registry) ValidateForAppend(evt Event, public bool) (Event, error) {
	evt.LaunchID = strings.TrimSpace(evt.LaunchID)
	if evt.LaunchID == "" {
		return Event{}, ErrLaunchIDRequired
	}
	evt.Type = Type(strings.TrimSpace(string(evt.Type)))
	if evt.Type == "" {
		return Event{}, ErrTypeRequired
	}
	def, ok := r.Definition(evt.Type)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrTypeUnknown, evt.Type)
	}
	if public && def.Visibility == VisibilityPrivate {
		return Event{}, fmt.Errorf("%w: %s", ErrPrivateEvent, evt.Type)
	}
	if len(evt.PayloadJSON) > 0 && !json.Valid(evt.PayloadJSON) {
		return Event{}, ErrPayloadInvalid
	}
	return evt, nil
}

// canonicalEnvelope fixes hash input field order in one place.
type canonicalEnvelope struct {
	LaunchID   string          `json:"launch_id"`
	Type       Type            `json:"type"`
	Timestamp  int64           `json:"ts"`
	RequestID  string          `json:"request_id"`
	ActorID    string          `json:"actor_id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
}

// EventHash computes the content hash of an event envelope.
func EventHash(evt Event) (string, error) {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	raw, err := json.Marshal(canonicalEnvelope{
		LaunchID:   evt.LaunchID,
		Type:       evt.Type,
		Timestamp:  evt.Timestamp.UTC().UnixMilli(),
		RequestID:  evt.RequestID,
		ActorID:    evt.ActorID,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Payload:    payload,
	})
	if err != nil {
		return "", fmt.Errorf("marshal event envelope: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// ChainHash links an event hash to the previous chain hash.
func ChainHash(evt Event, prevHash string) (string, error) {
	hash := evt.Hash
	if hash == "" {
		computed, err := EventHash(evt)
		if err != nil {
			return "", err
		}
		hash = computed
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", evt.Seq, prevHash, hash)))
	return hex.EncodeToString(sum[:]), nil
}
