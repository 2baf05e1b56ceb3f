package custody

import (
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/launch"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/ledger"
)

// Custody is the ephemeral custody record of one participant.
type Custody struct {
	Key     address.Key
	Launch  address.Key
	User    address.Key
	Balance uint64
	// Committed is what private commits debited from Balance and no sweep
	// has moved to the vault yet.
	Committed uint64
}

// State is what a custody command is decided against.
//
// Delegated reflects the record envelope's owner tag. PhysicalBalance and
// Reserve are only read by sweeps and reclaims.
type State struct {
	Launch          launch.State
	Custody         Custody
	Delegated       bool
	Pool            ledger.Pool
	Participant     ledger.Participant
	PhysicalBalance uint64
	Reserve         uint64
}
