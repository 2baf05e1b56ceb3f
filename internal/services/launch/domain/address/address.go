// Package address derives deterministic record keys from seed labels.
//
// Every child record of a launch is addressed by hashing the program
// namespace, a kind label, and the parent identity (plus the participant
// identity for per-user records). Any caller that knows the seeds can
// recompute an address without a lookup table.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Size is the byte length of a key.
const Size = 32

// Key identifies an account or record on the ledger.
type Key [Size]byte

// Zero is the empty key. It doubles as the native asset identifier.
var Zero Key

// ErrInvalidKey indicates a key string that does not decode to 32 bytes.
var ErrInvalidKey = errors.New("key must be 64 hex characters")

// Kind names a record role; its label is the seed used for derivation.
type Kind string

const (
	KindLaunch      Kind = "launch"
	KindPool        Kind = "pool"
	KindVault       Kind = "vault"
	KindTokenVault  Kind = "token_vault"
	KindParticipant Kind = "participant"
	KindCustody     Kind = "ephemeral"
	KindAuthority   Kind = "authority"
	KindMint        Kind = "mint"
)

// String renders the key as lowercase hex.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k == Zero
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Parse decodes a hex key. An empty string parses to Zero.
func Parse(value string) (Key, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Zero, nil
	}
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != Size {
		return Zero, ErrInvalidKey
	}
	var key Key
	copy(key[:], raw)
	return key, nil
}

// FromLabel hashes a human label into a key. Wallet identities in fixtures,
// demos, and the CLI use it to turn names into stable keys.
func FromLabel(label string) Key {
	return Key(sha3.Sum256([]byte("label:" + label)))
}

// Deriver derives keys inside one program namespace.
type Deriver struct {
	ProgramID string
}

// NewDeriver returns a deriver for the given program namespace.
func NewDeriver(programID string) Deriver {
	return Deriver{ProgramID: strings.TrimSpace(programID)}
}

// Derive hashes the seeds for a record kind. participant is optional and
// only set for per-user records.
func (d Deriver) Derive(kind Kind, parent Key, participant *Key) Key {
	h := sha3.New256()
	writeSeed(h, []byte(d.ProgramID))
	writeSeed(h, []byte(kind))
	writeSeed(h, parent[:])
	if participant != nil {
		writeSeed(h, participant[:])
	}
	var out Key
	copy(out[:], h.Sum(nil))
	return out
}

// Seeds returns the ordered seed list used to derive a key. The delegation
// service receives it so the executor can verify the address it is given.
func (d Deriver) Seeds(kind Kind, parent Key, participant *Key) [][]byte {
	seeds := [][]byte{[]byte(d.ProgramID), []byte(kind), append([]byte(nil), parent[:]...)}
	if participant != nil {
		seeds = append(seeds, append([]byte(nil), participant[:]...))
	}
	return seeds
}

// VerifySeeds reports whether seeds hash to key.
func VerifySeeds(key Key, seeds [][]byte) bool {
	h := sha3.New256()
	for _, seed := range seeds {
		writeSeed(h, seed)
	}
	var out Key
	copy(out[:], h.Sum(nil))
	return out == key
}

// Launch derives the launch key for a (creator, asset) pair.
func (d Deriver) Launch(creator, asset Key) Key {
	return d.Derive(KindLaunch, creator, &asset)
}

// Pool derives the pool key of a launch.
func (d Deriver) Pool(launch Key) Key {
	return d.Derive(KindPool, launch, nil)
}

// Vault derives the native-asset vault key of a launch.
func (d Deriver) Vault(launch Key) Key {
	return d.Derive(KindVault, launch, nil)
}

// TokenVault derives the token vault key of a launch.
func (d Deriver) TokenVault(launch Key) Key {
	return d.Derive(KindTokenVault, launch, nil)
}

// Authority derives the signing authority that owns a launch's vaults.
func (d Deriver) Authority(launch Key) Key {
	return d.Derive(KindAuthority, launch, nil)
}

// Mint derives the asset id of the token a launch sells.
func (d Deriver) Mint(launch Key) Key {
	return d.Derive(KindMint, launch, nil)
}

// Participant derives a participant record key.
func (d Deriver) Participant(launch, user Key) Key {
	return d.Derive(KindParticipant, launch, &user)
}

// Custody derives an ephemeral custody record key.
func (d Deriver) Custody(launch, user Key) Key {
	return d.Derive(KindCustody, launch, &user)
}

type hashWriter interface {
	Write(p []byte) (int, error)
}

// writeSeed length-prefixes each seed so adjacent seeds cannot collide.
func writeSeed(h hashWriter, seed []byte) {
	n := len(seed)
	_, _ = h.Write([]byte{byte(n >> 8), byte(n)})
	_, _ = h.Write(seed)
}

// Describe renders a key with its kind for log and error messages.
func Describe(kind Kind, key Key) string {
	return fmt.Sprintf("%s:%s", kind, key.String()[:12])
}
