// Package config loads the keysync configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	keysync "github.com/reoring/keysync"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = ".keysync.yaml"

// Config holds all keysync settings. Zero values fall back to Default().
type Config struct {
	// Documents
	Template   string   `yaml:"template"`
	Dir        string   `yaml:"dir"` // defaults to the template's directory
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
	Recursive  bool     `yaml:"recursive"`

	// Checking
	Workers       int    `yaml:"workers"`
	DuplicateKeys string `yaml:"duplicate_keys"` // ignore, warn, error
	MaxDepth      int    `yaml:"max_depth"`
	MaxBytes      int64  `yaml:"max_bytes"`

	// Output
	Format string `yaml:"format"` // text, json
	Lang   string `yaml:"lang"`   // en, ja

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	WatchDebounce string `yaml:"watch_debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:       1,
		DuplicateKeys: "ignore",
		Format:        "text",
		Lang:          "en",
		LogLevel:      "warn",
		LogFormat:     "console",
		WatchDebounce: "200ms",
	}
}

// Load reads path over the defaults. A missing file yields the defaults unless
// mustExist is set. Relative template and dir entries are resolved against the
// file's directory.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.Template = resolve(base, cfg.Template)
	cfg.Dir = resolve(base, cfg.Dir)

	cfg.applyEnvOverrides()
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// applyEnvOverrides applies KEYSYNC_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KEYSYNC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("KEYSYNC_LANG"); v != "" {
		c.Lang = v
	}
}

var (
	ValidFormats    = []string{"text", "json"}
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogFormats = []string{"console", "json"}
)

// Validate checks values that do not depend on the command being run.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d (must be at least 1)", c.Workers)
	}
	if c.MaxDepth < 0 || c.MaxBytes < 0 {
		return fmt.Errorf("max_depth and max_bytes must not be negative")
	}
	if _, ok := keysync.ParseSeverity(c.DuplicateKeys); !ok {
		return fmt.Errorf("invalid duplicate_keys: %s (valid: ignore, warn, error)", c.DuplicateKeys)
	}
	if !oneOf(c.Format, ValidFormats) {
		return fmt.Errorf("invalid format: %s (valid: %v)", c.Format, ValidFormats)
	}
	if c.Lang != "en" && c.Lang != "ja" {
		return fmt.Errorf("invalid lang: %s (valid: en, ja)", c.Lang)
	}
	if !oneOf(c.LogLevel, ValidLogLevels) {
		return fmt.Errorf("invalid log_level: %s (valid: %v)", c.LogLevel, ValidLogLevels)
	}
	if !oneOf(c.LogFormat, ValidLogFormats) {
		return fmt.Errorf("invalid log_format: %s (valid: %v)", c.LogFormat, ValidLogFormats)
	}
	if _, err := c.Debounce(); err != nil {
		return err
	}
	return nil
}

// Debounce parses WatchDebounce.
func (c *Config) Debounce() (time.Duration, error) {
	if c.WatchDebounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch_debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid watch_debounce: %s is negative", c.WatchDebounce)
	}
	return d, nil
}

// LoadOpt returns the decoding options for template and candidates.
func (c *Config) LoadOpt() keysync.LoadOpt {
	sev, _ := keysync.ParseSeverity(c.DuplicateKeys)
	return keysync.LoadOpt{
		Strictness: keysync.Strictness{OnDuplicateKey: sev},
		MaxDepth:   c.MaxDepth,
		MaxBytes:   c.MaxBytes,
	}
}

// CandidateDir returns Dir, or the template's directory when Dir is unset.
func (c *Config) CandidateDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	if c.Template == "" {
		return "."
	}
	return filepath.Dir(c.Template)
}

func oneOf(s string, valid []string) bool {
	for _, v := range valid {
		if s == v {
			return true
		}
	}
	return false
}
