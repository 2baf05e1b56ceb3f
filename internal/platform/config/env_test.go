package config

import (
	"errors"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"VESTIGE_TEST_PORT" envDefault:"123"`
}

type validatedConfig struct {
	Alpha uint64 `env:"VESTIGE_TEST_ALPHA" envDefault:"50"`
}

func (c *validatedConfig) Validate() error {
	if c.Alpha > 100 {
		return errors.New("alpha above 100")
	}
	return nil
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("port = %d, want 123", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("VESTIGE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("error = %v, want parse env prefix", err)
	}
}

func TestParseEnvRunsValidate(t *testing.T) {
	t.Setenv("VESTIGE_TEST_ALPHA", "101")

	var cfg validatedConfig
	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "validate config:") {
		t.Fatalf("error = %v, want validate config prefix", err)
	}
}
