package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"obforge/internal/score"
)

// Config holds all obforge configuration.
type Config struct {
	// Compile settings
	Compile CompileConfig `yaml:"compile"`

	// Inspection settings
	Inspect InspectConfig `yaml:"inspect"`

	// Scoring weights
	Weights score.Weights `yaml:"weights"`

	// Search settings
	Search SearchConfig `yaml:"search"`

	// Verification settings
	Verify VerifyConfig `yaml:"verify"`

	// History persistence
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CompileConfig configures the compiler adapter.
type CompileConfig struct {
	// Compiler overrides extension-based clang/clang++ detection.
	Compiler string `yaml:"compiler"`

	// BaseFlags are always passed, before any candidate flags.
	BaseFlags []string `yaml:"base_flags"`

	// Timeout bounds a single compile invocation.
	Timeout string `yaml:"timeout"`
}

// InspectConfig configures the metrics provider.
type InspectConfig struct {
	// PreferRich tries radare2 before the objdump fallback.
	PreferRich bool `yaml:"prefer_rich"`

	// RequireRich makes a missing radare2 installation fatal.
	RequireRich bool `yaml:"require_rich"`

	// SensitiveStrings are watched for disappearance from the binary.
	SensitiveStrings []string `yaml:"sensitive_strings"`
}

// SearchConfig configures candidate generation and the search loops.
type SearchConfig struct {
	// MinFlags / MaxFlags bound exhaustive combination sizes.
	MinFlags int `yaml:"min_flags"`
	MaxFlags int `yaml:"max_flags"`

	// Categories / Priorities filter the flag catalog; empty means all.
	Categories []string `yaml:"categories"`
	Priorities []string `yaml:"priorities"`

	// Threshold is the minimum score improvement a progressive step
	// must show to be locked in.
	Threshold float64 `yaml:"threshold"`

	// Workers bounds the parallel exhaustive variant; 1 is sequential.
	Workers int `yaml:"workers"`

	// KeepAllBinaries retains every candidate binary for post-mortems.
	KeepAllBinaries bool `yaml:"keep_all_binaries"`
}

// VerifyConfig configures equivalence checking.
type VerifyConfig struct {
	// Enabled runs the verifier on the best candidate after a search.
	Enabled bool `yaml:"enabled"`

	// Vectors are argument vectors both binaries are run with. An empty
	// list still exercises a bare invocation when Enabled.
	Vectors [][]string `yaml:"vectors"`
}

// HistoryConfig configures the SQLite trial store.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path of the database file; relative paths resolve under the
	// output directory.
	Path string `yaml:"path"`
}

// LoggingConfig configures the category file logs.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Compile: CompileConfig{
			Timeout: "60s",
		},
		Inspect: InspectConfig{
			PreferRich: true,
		},
		Weights: score.DefaultWeights(),
		Search: SearchConfig{
			MinFlags: 1,
			MaxFlags: 3,
			Workers:  1,
		},
		Verify: VerifyConfig{
			Vectors: [][]string{{}},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "history.db",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// Load loads configuration from a YAML file, layered over defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate rejects settings the run loop cannot work with.
func (c *Config) Validate() error {
	if c.Search.MinFlags < 1 {
		return fmt.Errorf("search.min_flags must be >= 1, got %d", c.Search.MinFlags)
	}
	if c.Search.MaxFlags != 0 && c.Search.MaxFlags < c.Search.MinFlags {
		return fmt.Errorf("search.max_flags (%d) below search.min_flags (%d)",
			c.Search.MaxFlags, c.Search.MinFlags)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be >= 1, got %d", c.Search.Workers)
	}
	if c.Compile.Timeout != "" {
		if _, err := time.ParseDuration(c.Compile.Timeout); err != nil {
			return fmt.Errorf("invalid compile.timeout %q: %w", c.Compile.Timeout, err)
		}
	}
	return nil
}

// CompileTimeout returns the parsed compile timeout, falling back to the
// adapter default when unset.
func (c *Config) CompileTimeout() time.Duration {
	if c.Compile.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Compile.Timeout)
	if err != nil {
		return 0
	}
	return d
}
