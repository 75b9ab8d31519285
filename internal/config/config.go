// Package config loads and validates the hookfang configuration from
// .hookfang.yaml, environment variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path"
	"slices"
)

// Hook names accepted in the hooks list.
const (
	HookImports     = "imports"
	HookVersionBump = "version-bump"
	HookCopyright   = "copyright"
)

// KnownHooks returns the hook names in their canonical run order.
func KnownHooks() []string {
	return []string{HookImports, HookVersionBump, HookCopyright}
}

// Config is the top-level hookfang configuration. Field tags use
// mapstructure for viper unmarshalling.
type Config struct {
	Hooks       []string          `mapstructure:"hooks"`
	Jobs        int               `mapstructure:"jobs"`
	CacheDir    string            `mapstructure:"cache_dir"`
	NoColor     bool              `mapstructure:"no_color"`
	Imports     ImportsConfig     `mapstructure:"imports"`
	VersionBump VersionBumpConfig `mapstructure:"version_bump"`
	Copyright   CopyrightConfig   `mapstructure:"copyright"`
}

// ImportsConfig holds the import-location checker allow-lists.
type ImportsConfig struct {
	TypeCheckingSentinels []string `mapstructure:"type_checking_sentinels"`
	SuppressionToken      string   `mapstructure:"suppression_token"`
	MaxFallbackStatements int      `mapstructure:"max_fallback_statements"`
	SkipModules           []string `mapstructure:"skip_modules"`
	IncludeGlobs          []string `mapstructure:"include_globs"`
}

// VersionBumpConfig holds the version-bump checker settings.
type VersionBumpConfig struct {
	VersionFiles []string `mapstructure:"version_files"`

	// UpstreamFallback enables diffing against HEAD~ when the current
	// branch has no configured upstream.
	UpstreamFallback bool `mapstructure:"upstream_fallback"`
}

// CopyrightConfig holds the copyright checker settings.
type CopyrightConfig struct {
	Owner  string `mapstructure:"owner"`
	Update bool   `mapstructure:"update"`

	// HeadBytes bounds how far into a file the header is searched for.
	HeadBytes int `mapstructure:"head_bytes"`
}

// Sentinel errors for configuration validation.
var (
	// ErrNoHooks indicates the hooks list is explicitly empty.
	ErrNoHooks = errors.New("hooks list must name at least one hook")
	// ErrUnknownHook indicates a hooks entry is not a recognized hook name.
	ErrUnknownHook = errors.New("unknown hook name")
	// ErrInvalidJobs indicates the jobs value is negative.
	ErrInvalidJobs = errors.New("jobs must be non-negative")
	// ErrBadGlob indicates an include glob has invalid pattern syntax.
	ErrBadGlob = errors.New("invalid include glob")
	// ErrInvalidFallback indicates max_fallback_statements is negative.
	ErrInvalidFallback = errors.New("imports.max_fallback_statements must be non-negative")
	// ErrInvalidHeadBytes indicates copyright.head_bytes is negative.
	ErrInvalidHeadBytes = errors.New("copyright.head_bytes must be non-negative")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if len(c.Hooks) == 0 {
		return ErrNoHooks
	}

	known := KnownHooks()

	for _, hook := range c.Hooks {
		if !slices.Contains(known, hook) {
			return fmt.Errorf("%w: %q", ErrUnknownHook, hook)
		}
	}

	if c.Jobs < 0 {
		return ErrInvalidJobs
	}

	if c.Imports.MaxFallbackStatements < 0 {
		return ErrInvalidFallback
	}

	if c.Copyright.HeadBytes < 0 {
		return ErrInvalidHeadBytes
	}

	for _, glob := range c.Imports.IncludeGlobs {
		if _, err := path.Match(glob, "probe.py"); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrBadGlob, glob, err)
		}
	}

	return nil
}

// EnabledHooks returns the configured hooks in canonical run order,
// regardless of their order in the config file.
func (c *Config) EnabledHooks() []string {
	enabled := make([]string, 0, len(c.Hooks))

	for _, hook := range KnownHooks() {
		if slices.Contains(c.Hooks, hook) {
			enabled = append(enabled, hook)
		}
	}

	return enabled
}
