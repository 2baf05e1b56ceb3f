// Package walletkey generates a wallet signing seed and prints the wallet
// key it controls.
package walletkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

// Run generates a wallet and writes its seed export and public key.
func Run(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return fmt.Errorf("generate wallet seed: %w", err)
	}
	wallet, err := walletauth.FromSeed(seed)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export VESTIGE_WALLET_SEED=%s\n", hex.EncodeToString(seed)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "# wallet %s\n", wallet.Key)
	return err
}
