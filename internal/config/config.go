// Package config loads Neve's runtime configuration: environment
// variables and, for `config build`/`switch`, a system manifest written
// in YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Backend names a builder backend (the NEVE_BUILD_BACKEND env var).
type Backend string

const (
	BackendNative    Backend = "native"
	BackendContainer Backend = "container"
)

// Config is the effective runtime configuration, merged from defaults,
// an optional YAML config file, and environment variables.
type Config struct {
	StoreDir   string  `yaml:"store_dir"`
	BuildJobs  int     `yaml:"build_jobs"`
	Backend    Backend `yaml:"backend"`
	NoColor    bool    `yaml:"-"` // set from NO_COLOR or the --no-color flag, never persisted
	KeepFailed bool    `yaml:"keep_failed"`
}

// Default returns the documented defaults: store under /neve/store, one
// build job per CPU, the native sandboxing backend.
func Default() *Config {
	return &Config{
		StoreDir:  "/neve/store",
		BuildJobs: runtime.NumCPU(),
		Backend:   BackendNative,
	}
}

// Load reads defaults, applies the YAML config file at path if present,
// then applies environment overrides last so NEVE_* env vars always win
// over the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides reads the environment variables: NEVE_STORE_DIR,
// NEVE_BUILD_JOBS, NEVE_BUILD_BACKEND, NO_COLOR, NEVE_KEEP_FAILED.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("NEVE_STORE_DIR"); dir != "" {
		c.StoreDir = dir
	}
	if jobs := os.Getenv("NEVE_BUILD_JOBS"); jobs != "" {
		if n, err := strconv.Atoi(jobs); err == nil && n > 0 {
			c.BuildJobs = n
		}
	}
	if backend := os.Getenv("NEVE_BUILD_BACKEND"); backend != "" {
		c.Backend = Backend(backend)
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		c.NoColor = true
	}
	if keep := os.Getenv("NEVE_KEEP_FAILED"); keep != "" {
		c.KeepFailed = keep == "1" || keep == "true"
	}
}

// Save writes cfg to path as the YAML runtime configuration that Load
// reads; it does not write a system manifest. System configuration is itself
// a Neve value, but `config build` may also read an initial YAML
// manifest naming the root module and its arguments.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Manifest describes a system configuration entry point for `neve config
// build <manifest>`: the module file to evaluate and the top-level
// binding inside it that yields the system's root derivation.
type Manifest struct {
	Module  string            `yaml:"module"`
	Entry   string            `yaml:"entry"`
	Args    map[string]string `yaml:"args"`
}

// LoadManifest parses a system manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parse manifest %s: %w", path, err)
	}
	if m.Entry == "" {
		m.Entry = "system"
	}
	return &m, nil
}
