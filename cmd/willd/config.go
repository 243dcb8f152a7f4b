package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling of human
// readable strings (e.g. "168h").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config captures the runtime configuration for willd.
type Config struct {
	ListenAddress         string      `yaml:"listen"`
	DatabaseURL           string      `yaml:"database_url"`
	BlobDir               string      `yaml:"blob_dir"`
	PollInterval          Duration    `yaml:"poll_interval"`
	SchedulerBatchSize    int         `yaml:"scheduler_batch_size"`
	MinGuardianReputation int32       `yaml:"min_guardian_reputation"`
	PauseOnStart          bool        `yaml:"pause"`
	Admin                 AdminConfig `yaml:"admin"`
}

// AdminConfig captures security settings for the admin API.
type AdminConfig struct {
	BearerToken     string `yaml:"bearer_token"`
	BearerTokenFile string `yaml:"bearer_token_file"`
}

// DefaultConfig returns the configuration used when no config file is
// supplied. It sets no DatabaseURL, and the daemon refuses to start without
// one.
func DefaultConfig() Config {
	return Config{
		ListenAddress:         ":8090",
		BlobDir:               "./willd-data/blobs",
		PollInterval:          Duration{Duration: 30 * time.Second},
		SchedulerBatchSize:    10,
		MinGuardianReputation: 0,
	}
}

// LoadConfig reads and parses a YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveBearerToken returns the configured admin bearer token, preferring
// an inline value over the token file.
func (c AdminConfig) ResolveBearerToken() (string, error) {
	if c.BearerToken != "" {
		return c.BearerToken, nil
	}
	if c.BearerTokenFile == "" {
		return "", nil
	}
	raw, err := os.ReadFile(c.BearerTokenFile)
	if err != nil {
		return "", fmt.Errorf("read bearer token file %s: %w", c.BearerTokenFile, err)
	}
	return string(raw), nil
}
