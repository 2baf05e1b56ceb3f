package integrity

import (
	"fmt"
	"strings"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

// Seal fills the hash, chain, and signature fields of an event whose Seq is
// already assigned. A nil keyring leaves the event unsigned.
func Seal(keyring *Keyring, evt event.Event, prevChainHash string) (event.Event, error) {
	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute event hash: %w", err)
	}
	evt.Hash = hash
	chainHash, err := event.ChainHash(evt, prevChainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	evt.PrevHash = prevChainHash
	evt.ChainHash = chainHash
	if keyring == nil {
		return evt, nil
	}
	signature, keyID, err := keyring.Sign(evt.LaunchID, chainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("sign chain hash: %w", err)
	}
	evt.Signature = signature
	evt.SignatureKeyID = keyID
	return evt, nil
}

// VerifyChain checks that events form an unbroken, correctly signed chain
// starting after prevChainHash.
func VerifyChain(keyring *Keyring, events []event.Event, prevChainHash string) error {
	prev := prevChainHash
	for _, evt := range events {
		if evt.PrevHash != prev {
			return fmt.Errorf("event %d: prev hash does not link", evt.Seq)
		}
		hash, err := event.EventHash(evt)
		if err != nil {
			return fmt.Errorf("event %d: %w", evt.Seq, err)
		}
		if hash != evt.Hash {
			return fmt.Errorf("event %d: content hash mismatch", evt.Seq)
		}
		chainHash, err := event.ChainHash(evt, prev)
		if err != nil {
			return fmt.Errorf("event %d: %w", evt.Seq, err)
		}
		if chainHash != evt.ChainHash {
			return fmt.Errorf("event %d: chain hash mismatch", evt.Seq)
		}
		if keyring != nil && strings.TrimSpace(evt.Signature) != "" {
			if err := keyring.Verify(evt.LaunchID, evt.ChainHash, evt.Signature, evt.SignatureKeyID); err != nil {
				return fmt.Errorf("event %d: %w", evt.Seq, err)
			}
		}
		prev = evt.ChainHash
	}
	return nil
}
