// Package config loads shell settings from the user's rc file.
package config

import (
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const rcFile = ".mishrc.yaml"

// Config holds the user-tunable shell settings.
type Config struct {
	Prompt  string `yaml:"prompt"`
	History struct {
		File  string `yaml:"file"`
		Limit int    `yaml:"limit"`
	} `yaml:"history"`
	Completion struct {
		SearchCwd bool `yaml:"search-cwd"`
	} `yaml:"completion"`
}

// Default returns the settings used when no rc file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg := &Config{Prompt: "mish> "}
	cfg.History.File = filepath.Join(home, ".mish_history")
	cfg.History.Limit = 1000
	cfg.Completion.SearchCwd = true
	return cfg
}

// Load reads ~/.mishrc.yaml over the defaults. A missing file is fine;
// a malformed one is reported once on stderr and otherwise ignored.
func Load() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default()
	}
	return loadFile(filepath.Join(home, rcFile))
}

func loadFile(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		os.Stderr.WriteString("mish: ignoring malformed " + rcFile + ": " + err.Error() + "\n")
		return Default()
	}

	if cfg.Prompt == "" {
		cfg.Prompt = "mish> "
	}
	if cfg.History.File == "" {
		cfg.History.File = Default().History.File
	}
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 1000
	}
	return cfg
}
