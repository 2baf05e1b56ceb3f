package integrity

import (
	"errors"
	"testing"
)

func TestKeyringSignAndVerify(t *testing.T) {
	keyring, err := NewKeyring(map[string][]byte{"v1": []byte("root-one"), "v2": []byte("root-two")}, "v2")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	sig, keyID, err := keyring.Sign("launch-1", "chain")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if keyID != "v2" {
		t.Fatalf("key id = %s, want v2", keyID)
	}
	if err := keyring.Verify("launch-1", "chain", sig, keyID); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := keyring.Verify("launch-2", "chain", sig, keyID); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("cross-launch err = %v, want %v", err, ErrSignatureMismatch)
	}
	if err := keyring.Verify("launch-1", "chain", sig, "v9"); err == nil {
		t.Fatal("expected unknown key id error")
	}
}

func TestNewKeyringValidation(t *testing.T) {
	if _, err := NewKeyring(nil, "v1"); err == nil {
		t.Fatal("expected error for empty keys")
	}
	if _, err := NewKeyring(map[string][]byte{"v1": []byte("k")}, " "); err == nil {
		t.Fatal("expected error for blank active id")
	}
	if _, err := NewKeyring(map[string][]byte{"v1": []byte("k")}, "v2"); err == nil {
		t.Fatal("expected error for unknown active id")
	}
}

func TestKeyringFromEnv(t *testing.T) {
	t.Setenv("VESTIGE_EVENT_HMAC_KEYS", "")
	t.Setenv("VESTIGE_EVENT_HMAC_KEY", "")
	t.Setenv("VESTIGE_EVENT_HMAC_KEY_ID", "")
	if _, err := KeyringFromEnv(); err == nil {
		t.Fatal("expected error without keys")
	}

	t.Setenv("VESTIGE_EVENT_HMAC_KEY", "secret")
	keyring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("single key: %v", err)
	}
	if keyring.ActiveKeyID() != "v1" {
		t.Fatalf("active key id = %s, want v1", keyring.ActiveKeyID())
	}

	t.Setenv("VESTIGE_EVENT_HMAC_KEYS", "old=a, new=b")
	t.Setenv("VESTIGE_EVENT_HMAC_KEY_ID", "new")
	keyring, err = KeyringFromEnv()
	if err != nil {
		t.Fatalf("multi key: %v", err)
	}
	if keyring.ActiveKeyID() != "new" {
		t.Fatalf("active key id = %s, want new", keyring.ActiveKeyID())
	}

	t.Setenv("VESTIGE_EVENT_HMAC_KEYS", "broken")
	if _, err := KeyringFromEnv(); err == nil {
		t.Fatal("expected error for malformed entry")
	}
}
