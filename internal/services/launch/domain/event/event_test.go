package event

import (
	"errors"
	"testing"
	"time"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, def := range []Definition{
		{Type: "launch.initialized", Visibility: VisibilityPublic},
		{Type: "ledger.commitment_applied", Visibility: VisibilityPrivate},
	} {
		if err := registry.Register(def); err != nil {
			t.Fatalf("register %s: %v", def.Type, err)
		}
	}
	return registry
}

func TestValidateForAppendRefusesPrivateOnPublicJournal(t *testing.T) {
	registry := testRegistry(t)
	evt := Event{LaunchID: "l", Type: "ledger.commitment_applied"}

	if _, err := registry.ValidateForAppend(evt, true); !errors.Is(err, ErrPrivateEvent) {
		t.Fatalf("err = %v, want %v", err, ErrPrivateEvent)
	}
	if _, err := registry.ValidateForAppend(evt, false); err != nil {
		t.Fatalf("private journal append: %v", err)
	}
}

func TestValidateForAppendErrors(t *testing.T) {
	registry := testRegistry(t)
	tests := []struct {
		name string
		evt  Event
		want error
	}{
		{name: "launch", evt: Event{Type: "launch.initialized"}, want: ErrLaunchIDRequired},
		{name: "type", evt: Event{LaunchID: "l"}, want: ErrTypeRequired},
		{name: "unknown", evt: Event{LaunchID: "l", Type: "x.y"}, want: ErrTypeUnknown},
		{name: "payload", evt: Event{LaunchID: "l", Type: "launch.initialized", PayloadJSON: []byte("{")}, want: ErrPayloadInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := registry.ValidateForAppend(tt.evt, true); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEventHashDeterministic(t *testing.T) {
	ts := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)
	evt := Event{LaunchID: "l", Timestamp: ts, Type: "launch.initialized", PayloadJSON: []byte(`{"supply":1}`)}

	first, err := EventHash(evt)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := EventHash(evt)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("hash not deterministic: %s != %s", first, second)
	}

	evt.PayloadJSON = []byte(`{"supply":2}`)
	changed, err := EventHash(evt)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if changed == first {
		t.Fatal("expected payload change to change hash")
	}
}

func TestChainHashDependsOnPredecessor(t *testing.T) {
	evt := Event{LaunchID: "l", Seq: 2, Type: "launch.initialized", Hash: "abc"}
	a, err := ChainHash(evt, "prev-a")
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	b, err := ChainHash(evt, "prev-b")
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	if a == b {
		t.Fatal("expected different chain hashes for different predecessors")
	}
}

func TestTypeDomain(t *testing.T) {
	if got := Type("launch.graduated").Domain(); got != "launch" {
		t.Fatalf("domain = %q, want %q", got, "launch")
	}
}
