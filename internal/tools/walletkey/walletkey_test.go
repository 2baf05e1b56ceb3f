package walletkey

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/vestige-labs/vestige/internal/services/launch/walletauth"
)

func TestRunRequiresOutput(t *testing.T) {
	if err := Run(nil, bytes.NewReader([]byte{1})); err == nil {
		t.Fatal("expected error when output is nil")
	}
}

func TestRunWritesSeedAndWallet(t *testing.T) {
	buf := &bytes.Buffer{}
	seed := bytes.Repeat([]byte{7}, 32)
	if err := Run(buf, bytes.NewReader(seed)); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	gotSeed := strings.TrimPrefix(lines[0], "export VESTIGE_WALLET_SEED=")
	if gotSeed != hex.EncodeToString(seed) {
		t.Fatalf("seed line = %q", lines[0])
	}
	wallet, err := walletauth.FromSeed(seed)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if lines[1] != "# wallet "+wallet.Key.String() {
		t.Fatalf("wallet line = %q, want key %s", lines[1], wallet.Key)
	}
}

func TestRunShortRead(t *testing.T) {
	if err := Run(&bytes.Buffer{}, bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatal("expected error for short random read")
	}
}
