// Package config loads and persists the facturante configuration file.
//
// Configuration lives in ~/.facturante/config.toml. Every setting has a
// default, so a missing file is not an error, and CLI flags override
// whatever the file provides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

const (
	// DirName is the configuration directory created under the user's home.
	DirName = ".facturante"

	// FileName is the configuration file inside the config directory.
	FileName = "config.toml"

	// DefaultArchiveKeep is how many runs the archive retains when
	// pruning and the file does not say otherwise.
	DefaultArchiveKeep = 100
)

// Config models config.toml. Zero values mean "use the default".
type Config struct {
	// Run holds submission defaults, overridable by CLI flags.
	Run RunSettings `toml:"run"`

	// Portal holds browser automation settings.
	Portal PortalSettings `toml:"portal"`

	// Archive holds run-history settings.
	Archive ArchiveSettings `toml:"archive"`

	dir string
}

// RunSettings mirrors domain.RunConfig in file-friendly form. Durations
// use Go duration syntax ("2s", "90s", "1m30s").
type RunSettings struct {
	// MaxConcurrent caps how many invoices run at once within a batch.
	MaxConcurrent int `toml:"max_concurrent"`

	// BatchDelay is the pause between consecutive batches.
	BatchDelay string `toml:"batch_delay"`

	// StepTimeout bounds each wizard step, including login.
	StepTimeout string `toml:"step_timeout"`

	// OutputDir is where generated documents are stored, organised by
	// issuer. Empty keeps documents in a per-session temporary
	// directory that is removed when the session closes.
	OutputDir string `toml:"output_dir"`
}

// PortalSettings controls the automated browser.
type PortalSettings struct {
	// Headless hides the browser window. Unset means headless.
	Headless *bool `toml:"headless"`
}

// ArchiveSettings controls run-history persistence.
type ArchiveSettings struct {
	// Keep is how many recent runs pruning retains.
	Keep int `toml:"keep"`

	// Disabled turns off run archiving entirely.
	Disabled bool `toml:"disabled"`
}

// Load reads the configuration under configDir, defaulting to
// ~/.facturante when empty. The directory is created if missing; a
// missing file yields the defaults.
func Load(configDir string) (*Config, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, FileName, err)
	}
	return cfg, nil
}

// Save writes the configuration back with owner-only permissions.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, FileName), data, 0600)
}

// Dir returns the directory this configuration was loaded from.
func (c *Config) Dir() string {
	return c.dir
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return filepath.Join(c.dir, FileName)
}

// IssuersPath returns the credential store location.
func (c *Config) IssuersPath() string {
	return filepath.Join(c.dir, "issuers.json")
}

// DatabasePath returns the run archive location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.dir, "data", "runs.db")
}

// ArchiveKeep returns the prune retention count.
func (c *Config) ArchiveKeep() int {
	if c.Archive.Keep > 0 {
		return c.Archive.Keep
	}
	return DefaultArchiveKeep
}

// RunConfig materialises the run settings into a domain.RunConfig,
// filling unset values with the domain defaults.
func (c *Config) RunConfig() (domain.RunConfig, error) {
	cfg := domain.DefaultRunConfig()

	if c.Run.MaxConcurrent != 0 {
		cfg.MaxConcurrent = c.Run.MaxConcurrent
	}
	if c.Run.BatchDelay != "" {
		d, err := time.ParseDuration(c.Run.BatchDelay)
		if err != nil {
			return domain.RunConfig{}, fmt.Errorf("%w: batch_delay: %v", domain.ErrConfiguration, err)
		}
		cfg.BatchDelay = d
	}
	if c.Run.StepTimeout != "" {
		d, err := time.ParseDuration(c.Run.StepTimeout)
		if err != nil {
			return domain.RunConfig{}, fmt.Errorf("%w: step_timeout: %v", domain.ErrConfiguration, err)
		}
		cfg.StepTimeout = d
	}
	if c.Run.OutputDir != "" {
		cfg.OutputDir = c.Run.OutputDir
	}
	if c.Portal.Headless != nil {
		cfg.Headless = *c.Portal.Headless
	}

	return cfg, cfg.Validate()
}

// resolveDir expands the default directory and ensures it exists with
// owner-only permissions.
func resolveDir(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, DirName)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return configDir, nil
}
