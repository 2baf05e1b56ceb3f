package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// Owner tags which authority may currently write a record.
type Owner string

const (
	// OwnerProtocol is the public ledger authority.
	OwnerProtocol Owner = "protocol"
	// OwnerExecutor is the private executor named by Envelope.ExecutorID.
	OwnerExecutor Owner = "executor"
	// OwnerInTransit marks a record being handed back by the delegation
	// mechanism: published, not yet settled.
	OwnerInTransit Owner = "in_transit"
)

// ErrOwnerMismatch indicates a record is not owned by the expected authority.
var ErrOwnerMismatch = errors.New("record owner mismatch")

// Envelope is the stored form of a record on either venue.
type Envelope struct {
	Key        address.Key
	Kind       address.Kind
	Owner      Owner
	ExecutorID string
	Data       []byte
	UpdatedAt  time.Time
}

// Delegated reports whether the public ledger has handed write-authority away.
func (e Envelope) Delegated() bool {
	return e.Owner == OwnerExecutor
}

// OwnerError describes a failed owner assertion.
type OwnerError struct {
	Key      address.Key
	Kind     address.Kind
	Expected Owner
	Actual   Owner
}

// Error implements the error interface.
func (e *OwnerError) Error() string {
	return fmt.Sprintf("%s owned by %s, expected %s", address.Describe(e.Kind, e.Key), e.Actual, e.Expected)
}

// Unwrap allows errors.Is(err, ErrOwnerMismatch).
func (e *OwnerError) Unwrap() error {
	return ErrOwnerMismatch
}

// ExpectOwner asserts the record is owned by want.
func (e Envelope) ExpectOwner(want Owner) error {
	if e.Owner == want {
		return nil
	}
	return &OwnerError{Key: e.Key, Kind: e.Kind, Expected: want, Actual: e.Owner}
}

// Clone returns a deep copy of the envelope.
func (e Envelope) Clone() Envelope {
	e.Data = append([]byte(nil), e.Data...)
	return e
}
