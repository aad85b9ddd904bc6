// Package config loads bundlefix configuration from an optional yaml file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = ".bundlefix.yaml"

// Config holds all bundlefix configuration.
type Config struct {
	// AssetsDir is the generated asset tree to repair, relative to the
	// working directory the tool runs from after a site build.
	AssetsDir string `yaml:"assets_dir"`

	// KeepGoing continues past per-file failures instead of stopping at
	// the first one.
	KeepGoing bool `yaml:"keep_going"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in configuration. The assets path matches the
// layout the site generator emits.
func Default() *Config {
	return &Config{
		AssetsDir: filepath.Join("src", ".vuepress", "dist", "assets"),
	}
}

// Load reads the config file at path, falling back to DefaultFile when path
// is empty. A missing file yields the defaults. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is the common case.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values, so CI can
// point the tool at a different dist directory without a config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BUNDLEFIX_ASSETS_DIR"); v != "" {
		cfg.AssetsDir = v
	}
	if v := os.Getenv("BUNDLEFIX_KEEP_GOING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.KeepGoing = b
		}
	}
	if v := os.Getenv("BUNDLEFIX_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.Verbose = b
		}
	}
}
