package hmackey

import (
	"bytes"
	"flag"
	"fmt"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("hmackey", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Bytes != 32 || cfg.KeyID != "v1" || cfg.Existing != "" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestParseConfigBadArgs(t *testing.T) {
	fs := flag.NewFlagSet("hmackey", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := ParseConfig(fs, []string{"-invalid"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestRunWritesSingleKey(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Run(Config{Bytes: 4, KeyID: "v1"}, buf, bytes.NewReader([]byte{1, 2, 3, 4})); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "VESTIGE_EVENT_HMAC_KEY=01020304\nVESTIGE_EVENT_HMAC_KEY_ID=v1\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunRotatesKeyring(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := Config{Bytes: 2, KeyID: "v2", Existing: "v1=old"}
	if err := Run(cfg, buf, bytes.NewReader([]byte{0xab, 0xcd})); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "VESTIGE_EVENT_HMAC_KEYS=v1=old,v2=abcd\nVESTIGE_EVENT_HMAC_KEY_ID=v2\n"
	if got := buf.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no bytes", cfg: Config{Bytes: 0, KeyID: "v1"}},
		{name: "empty id", cfg: Config{Bytes: 4, KeyID: " "}},
		{name: "id with separator", cfg: Config{Bytes: 4, KeyID: "v=2"}},
		{name: "duplicate id", cfg: Config{Bytes: 4, KeyID: "v1", Existing: "v1=old"}},
		{name: "malformed keyring", cfg: Config{Bytes: 4, KeyID: "v2", Existing: "broken"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Run(tt.cfg, &bytes.Buffer{}, bytes.NewReader(make([]byte, 8))); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunNilOutput(t *testing.T) {
	if err := Run(Config{Bytes: 4, KeyID: "v1"}, nil, nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}

func TestRunDefaultReader(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Run(Config{Bytes: 4, KeyID: "v1"}, buf, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	first, _, _ := strings.Cut(buf.String(), "\n")
	const prefix = "VESTIGE_EVENT_HMAC_KEY="
	if !strings.HasPrefix(first, prefix) || len(strings.TrimPrefix(first, prefix)) != 8 {
		t.Fatalf("first line = %q, want %s and 8 hex chars", first, prefix)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, fmt.Errorf("read error") }

func TestRunReaderError(t *testing.T) {
	if err := Run(Config{Bytes: 4, KeyID: "v1"}, &bytes.Buffer{}, errReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
}
