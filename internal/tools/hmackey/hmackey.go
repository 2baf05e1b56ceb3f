// Package hmackey generates journal signing keys in the environment form
// the launch server reads.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vestige-labs/vestige/internal/services/launch/storage/integrity"
)

// Config holds configuration for key generation.
type Config struct {
	Bytes int
	KeyID string
	// Existing is a VESTIGE_EVENT_HMAC_KEYS value to rotate. When set the
	// new key is appended and becomes the active key.
	Existing string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32, KeyID: "v1"}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes")
	fs.StringVar(&cfg.KeyID, "id", cfg.KeyID, "key id of the generated key")
	fs.StringVar(&cfg.Existing, "rotate", cfg.Existing, "existing VESTIGE_EVENT_HMAC_KEYS value to extend")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates a key, checks that the resulting keyring loads, and
// writes the environment lines to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes <= 0 {
		return errors.New("bytes must be greater than zero")
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" || strings.ContainsAny(keyID, "=,") {
		return fmt.Errorf("invalid key id %q", cfg.KeyID)
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	secret := hex.EncodeToString(buf)

	env := integrity.Env{KeyID: keyID}
	if existing := strings.TrimSpace(cfg.Existing); existing != "" {
		for _, entry := range strings.Split(existing, ",") {
			if id, _, _ := strings.Cut(strings.TrimSpace(entry), "="); strings.TrimSpace(id) == keyID {
				return fmt.Errorf("key id %q already in keyring", keyID)
			}
		}
		env.Keys = existing + "," + keyID + "=" + secret
	} else {
		env.Key = secret
	}
	if _, err := env.Keyring(); err != nil {
		return fmt.Errorf("check keyring: %w", err)
	}

	if env.Keys != "" {
		_, err := fmt.Fprintf(out, "VESTIGE_EVENT_HMAC_KEYS=%s\nVESTIGE_EVENT_HMAC_KEY_ID=%s\n", env.Keys, keyID)
		return err
	}
	_, err := fmt.Fprintf(out, "VESTIGE_EVENT_HMAC_KEY=%s\nVESTIGE_EVENT_HMAC_KEY_ID=%s\n", secret, keyID)
	return err
}
