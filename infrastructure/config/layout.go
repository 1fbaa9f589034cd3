package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	domainconfig "titlechain/domain/config"
)

// LoadLayout reads a YAML layout file on top of base. Keys absent from the
// file keep base's values, unknown keys are rejected.
func LoadLayout(path string, base *domainconfig.DomainConfig) (*domainconfig.DomainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return ParseLayout(data, base)
}

// ParseLayout decodes YAML layout overrides on top of base
func ParseLayout(data []byte, base *domainconfig.DomainConfig) (*domainconfig.DomainConfig, error) {
	if base == nil {
		base = domainconfig.DefaultDomainConfig()
	}
	cfg := base.Clone()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return cfg, nil
}
