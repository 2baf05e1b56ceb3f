package vestigectl

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vestige-labs/vestige/internal/services/launch/api/launchv1"
)

// Definition is a launch described in YAML:
//
//	asset: native
//	token_supply: 1000000000
//	start: 2026-11-01T00:00:00Z
//	duration: 72h
//	graduation_target: 500000000
//	min_commitment: 1000000
//	max_commitment: 100000000
type Definition struct {
	Asset            string        `yaml:"asset"`
	TokenSupply      uint64        `yaml:"token_supply"`
	Start            time.Time     `yaml:"start"`
	End              time.Time     `yaml:"end"`
	Duration         time.Duration `yaml:"duration"`
	GraduationTarget uint64        `yaml:"graduation_target"`
	MinCommitment    uint64        `yaml:"min_commitment"`
	MaxCommitment    uint64        `yaml:"max_commitment"`
}

// LoadDefinition reads a launch definition file.
func LoadDefinition(path string) (Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read definition: %w", err)
	}
	return ParseDefinition(raw)
}

// ParseDefinition decodes a launch definition. Unknown fields are errors.
// End may be given directly or as Duration after Start.
func ParseDefinition(raw []byte) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("decode definition: %w", err)
	}
	if def.Start.IsZero() {
		return Definition{}, fmt.Errorf("definition start is required")
	}
	switch {
	case !def.End.IsZero() && def.Duration != 0:
		return Definition{}, fmt.Errorf("definition sets both end and duration")
	case def.End.IsZero():
		def.End = def.Start.Add(def.Duration)
	}
	return def, nil
}

// Request converts the definition into an initialize request. Range and
// limit checks are left to the server.
func (d Definition) Request() (*launchv1.InitializeLaunchRequest, error) {
	asset := d.Asset
	if asset == "" {
		asset = "native"
	}
	assetKey, err := parseKey(asset)
	if err != nil {
		return nil, err
	}
	return &launchv1.InitializeLaunchRequest{
		Asset:            assetKey,
		TokenSupply:      d.TokenSupply,
		StartTime:        d.Start.Unix(),
		EndTime:          d.End.Unix(),
		GraduationTarget: d.GraduationTarget,
		MinCommitment:    d.MinCommitment,
		MaxCommitment:    d.MaxCommitment,
	}, nil
}
