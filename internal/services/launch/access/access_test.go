package access

import (
	"errors"
	"testing"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

func TestRegistryCheck(t *testing.T) {
	registry := NewRegistry()
	pool := address.FromLabel("pool")
	participant := address.FromLabel("participant")
	alice := address.FromLabel("alice")
	bob := address.FromLabel("bob")

	if err := registry.Check(pool, alice); !errors.Is(err, ErrDenied) {
		t.Fatalf("err = %v, want %v", err, ErrDenied)
	}

	registry.CreatePermission(pool, nil)
	if err := registry.Check(pool, bob); err != nil {
		t.Fatalf("public check: %v", err)
	}

	registry.CreatePermission(participant, []address.Key{alice})
	if err := registry.Check(participant, alice); err != nil {
		t.Fatalf("member check: %v", err)
	}
	if err := registry.Check(participant, bob); !errors.Is(err, ErrDenied) {
		t.Fatalf("err = %v, want %v", err, ErrDenied)
	}

	registry.Revoke(participant)
	if err := registry.Check(participant, alice); !errors.Is(err, ErrDenied) {
		t.Fatalf("err after revoke = %v, want %v", err, ErrDenied)
	}
}
