package integrity

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

const defaultKeyID = "v1"

// Env is the keyring environment. VESTIGE_EVENT_HMAC_KEYS takes id=secret
// pairs separated by commas and wins over the single-key form.
type Env struct {
	Keys  string `env:"VESTIGE_EVENT_HMAC_KEYS"`
	Key   string `env:"VESTIGE_EVENT_HMAC_KEY"`
	KeyID string `env:"VESTIGE_EVENT_HMAC_KEY_ID" envDefault:"v1"`
}

// KeyringFromEnv loads the HMAC keyring from environment variables.
func KeyringFromEnv() (*Keyring, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse keyring env: %w", err)
	}
	return cfg.Keyring()
}

// Keyring builds the keyring the environment describes.
func (e Env) Keyring() (*Keyring, error) {
	keyID := strings.TrimSpace(e.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}
	spec := strings.TrimSpace(e.Keys)
	if spec == "" {
		raw := strings.TrimSpace(e.Key)
		if raw == "" {
			return nil, fmt.Errorf("VESTIGE_EVENT_HMAC_KEY is required")
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id, value = strings.TrimSpace(id), strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid VESTIGE_EVENT_HMAC_KEYS entry %q", entry)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
