// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gemchat.
//
// Configuration lives in TOML with sensible defaults and environment
// variable overrides:
//   - ~/.gemchat/config.toml
//   - GEMINI_API_KEY overrides the api_key field
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/gemchat-tui/internal/util"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config represents the complete gemchat configuration.
type Config struct {
	// APIKey authenticates against the Gemini API. Overridable via the
	// GEMINI_API_KEY environment variable.
	APIKey string `toml:"api_key"`

	// Model is the Gemini model to use.
	Model string `toml:"model"`

	// ThinkingBudget bounds the model's internal reasoning effort per
	// request. 0 disables extended reasoning.
	ThinkingBudget int `toml:"thinking_budget"`

	// DataDir holds the session database and log file.
	DataDir string `toml:"data_dir"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Model:          DefaultModel,
		ThinkingBudget: 0,
		DataDir:        defaultDataDir(),
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies defaults for missing fields, then
// applies environment overrides. A missing file is not an error: defaults
// plus environment win.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configPath()
	if err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges. A negative thinking budget is clamped to 0
// rather than rejected.
func (c *Config) Validate() error {
	if c.ThinkingBudget < 0 {
		c.ThinkingBudget = 0
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	return nil
}

// Save writes the configuration back to disk atomically.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// =============================================================================
// PATHS
// =============================================================================

// configPath returns ~/.gemchat/config.toml.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gemchat", "config.toml"), nil
}

// defaultDataDir returns ~/.gemchat, falling back to the working directory
// when the home directory is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gemchat"
	}
	return filepath.Join(home, ".gemchat")
}
