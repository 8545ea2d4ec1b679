package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Per-operation cache policies are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Cache         CacheConfig        `yaml:"cache"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// CacheConfig overrides named cache policies, e.g. "clubs.public".
type CacheConfig struct {
	Policies map[string]PolicyOverride `yaml:"policies"`
}

// PolicyOverride replaces the fields that are set.
type PolicyOverride struct {
	TTL        *Duration `yaml:"ttl,omitempty"`
	Scope      *string   `yaml:"scope,omitempty"`
	AllowStale *bool     `yaml:"allow_stale,omitempty"`
	MaxStale   *Duration `yaml:"max_stale,omitempty"`
}

// NotificationConfig lists extra recipients.
type NotificationConfig struct {
	Admins         []string `yaml:"admins"`
	AccessRequests []string `yaml:"access_requests"`
}

// Duration decodes "90s" or "10m" style YAML scalars.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFrom(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFrom loads the YAML configuration from path.
func LoadYAMLConfigFrom(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PolicyOverrides returns the cache overrides, nil-safe.
func (c *YAMLConfig) PolicyOverrides() map[string]PolicyOverride {
	if c == nil {
		return nil
	}
	return c.Cache.Policies
}

// ApplyTo merges YAML notification recipients into cfg.
func (c *YAMLConfig) ApplyTo(cfg *Config) {
	if c == nil {
		return
	}
	cfg.AdminNotify = appendUnique(cfg.AdminNotify, c.Notifications.Admins...)
	cfg.AccessRequestNotify = appendUnique(cfg.AccessRequestNotify, c.Notifications.AccessRequests...)
}

func appendUnique(list []string, more ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		seen[s] = true
	}
	for _, s := range more {
		if !seen[s] {
			list = append(list, s)
			seen[s] = true
		}
	}
	return list
}
