package integrity

import (
	"testing"
	"time"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/event"
)

func TestSealAndVerifyChain(t *testing.T) {
	keyring, err := NewKeyring(map[string][]byte{"v1": []byte("root")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var chain []event.Event
	prev := ""
	for i := 1; i <= 3; i++ {
		evt, err := Seal(keyring, event.Event{
			LaunchID:    "launch-1",
			Seq:         uint64(i),
			Type:        "launch.initialized",
			Timestamp:   at.Add(time.Duration(i) * time.Second),
			PayloadJSON: []byte(`{}`),
		}, prev)
		if err != nil {
			t.Fatalf("seal %d: %v", i, err)
		}
		chain = append(chain, evt)
		prev = evt.ChainHash
	}
	if err := VerifyChain(keyring, chain, ""); err != nil {
		t.Fatalf("verify: %v", err)
	}

	tampered := append([]event.Event(nil), chain...)
	tampered[1].PayloadJSON = []byte(`{"amount":1}`)
	if err := VerifyChain(keyring, tampered, ""); err == nil {
		t.Fatal("expected tampered payload to fail verification")
	}

	resigned := append([]event.Event(nil), chain...)
	resigned[2].Signature = "00"
	if err := VerifyChain(keyring, resigned, ""); err == nil {
		t.Fatal("expected bad signature to fail verification")
	}
}
