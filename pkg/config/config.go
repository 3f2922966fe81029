// Package config resolves command-line flags, an optional JSON options file,
// and built-in defaults into one validated configuration for a run. Flags take
// precedence over file values, file values over defaults.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Default limits, in bytes (characters for MaxPartSize).
const (
	DefaultMaxFilesize  = 50000
	DefaultMaxTotalSize = 50000
)

// Config holds all options for one run. Immutable after Load returns.
type Config struct {
	Root string `mapstructure:"root"`

	// Filtering
	Include        []string `mapstructure:"include"`
	Exclude        []string `mapstructure:"exclude"`
	Contain        []string `mapstructure:"contain"`
	MaxDepth       int      `mapstructure:"max-depth" validate:"gte=0"`
	MaxFilesize    int64    `mapstructure:"max-filesize" validate:"gte=0"`
	MaxTotalSize   int64    `mapstructure:"max-total-size" validate:"gte=0"`
	Binary         bool     `mapstructure:"binary"`
	Hidden         bool     `mapstructure:"hidden"`
	FollowLinks    bool     `mapstructure:"follow-links"`
	ModifiedAfter  string   `mapstructure:"modified-after"`
	ModifiedBefore string   `mapstructure:"modified-before"`

	// Ignore sources
	NoGitignore        bool     `mapstructure:"no-gitignore"`
	NoPromptpackIgnore bool     `mapstructure:"no-promptpack-ignore"`
	IgnoreFiles        []string `mapstructure:"ignore-file"`

	// Template
	Template             string `mapstructure:"template"`
	NoPromptpackTemplate bool   `mapstructure:"no-promptpack-template"`

	// Output
	MaxPartSize int    `mapstructure:"max-part-size" validate:"gte=0"`
	Output      string `mapstructure:"output"`
	Clipboard   bool   `mapstructure:"clipboard"`

	// Modes
	DryRun       bool `mapstructure:"dry-run"`
	Paths        bool `mapstructure:"paths"`
	Tree         bool `mapstructure:"tree"`
	FileSizes    bool `mapstructure:"file-sizes"`
	Size         bool `mapstructure:"size"`
	CopyTemplate bool `mapstructure:"copy-template"`

	Verbose bool `mapstructure:"verbose"`

	// Parsed time bounds; nil when the corresponding flag is unset.
	After  *time.Time `mapstructure:"-"`
	Before *time.Time `mapstructure:"-"`
}

// Load merges the given flag set with the JSON options file named by the
// --options flag (if any) and validates the result. The root directory comes
// from the positional argument and overrides any root in the options file.
// All configuration errors are reported here, before any file enumeration
// starts.
func Load(flags *pflag.FlagSet, root string) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if optionsPath, _ := flags.GetString("options"); optionsPath != "" {
		v.SetConfigFile(optionsPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read options file %s: %w", optionsPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}

	if root != "" {
		cfg.Root = root
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finalize parses derived fields and validates the configuration.
func (c *Config) finalize() error {
	if c.Root == "" {
		c.Root = "."
	}

	after, err := parseTimeBound(c.ModifiedAfter)
	if err != nil {
		return fmt.Errorf("invalid --modified-after value %q: %w", c.ModifiedAfter, err)
	}
	c.After = after

	before, err := parseTimeBound(c.ModifiedBefore)
	if err != nil {
		return fmt.Errorf("invalid --modified-before value %q: %w", c.ModifiedBefore, err)
	}
	c.Before = before

	return c.Validate()
}

// Validate checks the configuration for errors that must surface before any
// I/O happens: malformed globs, negative limits, conflicting flags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, pattern := range append(append([]string{}, c.Include...), c.Exclude...) {
		if err := checkGlob(pattern); err != nil {
			return err
		}
	}

	if c.Output != "" && c.Clipboard {
		return fmt.Errorf("--output and --clipboard are mutually exclusive")
	}

	if c.After != nil && c.Before != nil && c.After.After(*c.Before) {
		return fmt.Errorf("--modified-after %s is later than --modified-before %s",
			c.After.Format(time.RFC3339), c.Before.Format(time.RFC3339))
	}

	return nil
}

// ListOnly reports whether the run is in a listing mode that never invokes
// the renderer. Fatal total-size checks are bypassed in these modes.
func (c *Config) ListOnly() bool {
	return c.DryRun || c.Paths || c.Tree || c.FileSizes || c.Size
}

// checkGlob rejects syntactically malformed glob patterns up front so that a
// bad pattern is a configuration error rather than a per-file failure.
func checkGlob(pattern string) error {
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}

// parseTimeBound accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date
// (interpreted as midnight local time).
func parseTimeBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("expected RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return &t, nil
}
