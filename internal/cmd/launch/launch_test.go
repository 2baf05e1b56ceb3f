package launch

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 || cfg.ExplorerAddr != ":8091" {
		t.Fatalf("listen = %d %q, want 8090 :8091", cfg.Port, cfg.ExplorerAddr)
	}
	if cfg.EarlyBonusAlpha != 50 || cfg.MinReserve != 890880 {
		t.Fatalf("alpha, reserve = %d, %d", cfg.EarlyBonusAlpha, cfg.MinReserve)
	}
	if got := cfg.ListenAddr(); got != ":8090" {
		t.Fatalf("listen addr = %q, want :8090", got)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("VESTIGE_LAUNCH_ADDR", "127.0.0.1:7000")
	t.Setenv("VESTIGE_LAUNCH_DB_PATH", "/tmp/env.db")
	t.Setenv("VESTIGE_EXECUTOR_DB_PATH", "/tmp/executor.db")

	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "/tmp/flag.db", "-faucet"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:7000" {
		t.Fatalf("listen addr = %q, want 127.0.0.1:7000", cfg.ListenAddr())
	}
	if cfg.DBPath != "/tmp/flag.db" || !cfg.Faucet {
		t.Fatalf("db, faucet = %q, %v", cfg.DBPath, cfg.Faucet)
	}
	if cfg.ExecutorDBPath != "/tmp/executor.db" {
		t.Fatalf("executor db = %q, want /tmp/executor.db", cfg.ExecutorDBPath)
	}
}

func TestParseConfigRejectsLargeBonus(t *testing.T) {
	t.Setenv("VESTIGE_EARLY_BONUS_ALPHA", "150")

	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error for bonus above 100")
	}
}

func TestKeyringFromConfig(t *testing.T) {
	t.Setenv("VESTIGE_EVENT_HMAC_KEYS", "v1=old,v2=new")
	t.Setenv("VESTIGE_EVENT_HMAC_KEY_ID", "v2")

	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	keyring, err := cfg.Keyring.Keyring()
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	if keyring.ActiveKeyID() != "v2" {
		t.Fatalf("active key = %q, want v2", keyring.ActiveKeyID())
	}
}
