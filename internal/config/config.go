// Package config loads geomserver's optional YAML config file (spec.md §6's
// CLI surface gets one ambient addition here: `--config`). The teacher ships
// no config file of its own — flags only — so this package is grounded on
// the shape of the flags it backs rather than on any teacher file; `Load`
// simply gives those same flags a file-based default.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds the server subcommand's settings. Zero values mean "not set
// by the file"; cmd/geomserver applies flag values on top, so a flag always
// wins over a config file (cobra/pflag's own precedence convention).
type Config struct {
	Bind      string `yaml:"bind"`
	PrintAddr bool   `yaml:"print_addr"`
	WriteAddr string `yaml:"write_addr"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
