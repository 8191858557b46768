// Package config loads the optional pyvers configuration file. Everything
// has a working default; the file only overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pyvers/pyvers/pkg/build"
	"github.com/pyvers/pyvers/pkg/catalog"
)

// Config is the user-facing configuration surface.
type Config struct {
	// Catalog replaces the built-in version catalog when non-empty.
	Catalog []catalog.VersionEntry `yaml:"catalog" validate:"omitempty,dive"`

	// Prefix is the install prefix passed to configure.
	Prefix string `yaml:"prefix"`

	// MirrorURL points the fetcher at a source mirror.
	MirrorURL string `yaml:"mirror_url" validate:"omitempty,url"`

	// HistoryDB is the SQLite run-history database path. "off" disables
	// history entirely.
	HistoryDB string `yaml:"history_db"`

	// WorkRoot hosts the per-version build workspaces.
	WorkRoot string `yaml:"work_root"`

	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig toggles build-stage tracing.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Prefix:    build.DefaultPrefix,
		MirrorURL: build.DefaultBaseURL,
		HistoryDB: defaultHistoryPath(),
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "pyvers", "config.yaml")
	}
	return ""
}

// Load reads the config file at path, falling back to defaults when path
// is empty or the default file does not exist. An explicitly given path
// that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and catalog consistency.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.Catalog) > 0 {
		if _, err := catalog.New(c.Catalog); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// BuildCatalog returns the configured catalog, or the built-in one when
// the file does not override it.
func (c Config) BuildCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog) == 0 {
		return catalog.Default(), nil
	}
	return catalog.New(c.Catalog)
}

// HistoryEnabled reports whether run history should be recorded.
func (c Config) HistoryEnabled() bool {
	return c.HistoryDB != "" && c.HistoryDB != "off"
}

func defaultHistoryPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "pyvers", "history.db")
	}
	return ""
}
