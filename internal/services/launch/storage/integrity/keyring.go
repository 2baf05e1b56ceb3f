package integrity

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrSignatureMismatch indicates a chain hash signed by a different key.
var ErrSignatureMismatch = errors.New("signature mismatch")

// Keyring holds root HMAC keys by id and the id new signatures use.
type Keyring struct {
	keys        map[string][]byte
	activeKeyID string
}

// NewKeyring constructs a keyring for HMAC signing and verification.
func NewKeyring(keys map[string][]byte, activeKeyID string) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hmac keys are required")
	}
	activeKeyID = strings.TrimSpace(activeKeyID)
	if activeKeyID == "" {
		return nil, fmt.Errorf("active hmac key id is required")
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, fmt.Errorf("active hmac key id %q is not configured", activeKeyID)
	}
	copied := make(map[string][]byte, len(keys))
	for id, key := range keys {
		copied[id] = append([]byte(nil), key...)
	}
	return &Keyring{keys: copied, activeKeyID: activeKeyID}, nil
}

// ActiveKeyID returns the signing key id.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.activeKeyID
}

// Sign signs a launch's chain hash with the active key.
func (k *Keyring) Sign(launchID, chainHash string) (signature, keyID string, err error) {
	if k == nil {
		return "", "", fmt.Errorf("hmac keyring is not configured")
	}
	key, err := launchKey(k.keys[k.activeKeyID], launchID)
	if err != nil {
		return "", "", err
	}
	return macHex(key, chainHash), k.activeKeyID, nil
}

// Verify checks a chain hash signature produced by Sign, with any known key.
func (k *Keyring) Verify(launchID, chainHash, signature, keyID string) error {
	if k == nil {
		return fmt.Errorf("hmac keyring is not configured")
	}
	root, ok := k.keys[strings.TrimSpace(keyID)]
	if !ok {
		return fmt.Errorf("signature key id %q is unknown", keyID)
	}
	key, err := launchKey(root, launchID)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(macHex(key, chainHash)), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func launchKey(root []byte, launchID string) ([]byte, error) {
	launchID = strings.TrimSpace(launchID)
	if launchID == "" {
		return nil, fmt.Errorf("launch id is required")
	}
	key, err := hkdf.Key(sha256.New, root, nil, "launch:"+launchID, 32)
	if err != nil {
		return nil, fmt.Errorf("derive launch key: %w", err)
	}
	return key, nil
}

func macHex(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
