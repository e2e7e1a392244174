// Package config provides configuration management for the sqldialect CLI.
package config

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/format"
	"github.com/leapstack-labs/sqldialect/pkg/transpile"
)

// Default configuration values.
const (
	DefaultRead   = "ansi"
	DefaultWrite  = "databricks"
	DefaultOutput = "text"

	DefaultWatchDebounce = 200 * time.Millisecond
)

// Config holds all CLI configuration options.
type Config struct {
	Read         string                  `koanf:"read"`
	Write        string                  `koanf:"write"`
	Unsupported  format.UnsupportedLevel `koanf:"unsupported"`
	Normalize    bool                    `koanf:"normalize"`
	CacheSize    int                     `koanf:"cache_size"`
	Concurrency  int                     `koanf:"concurrency"`
	Verbose      bool                    `koanf:"verbose"`
	OutputFormat string                  `koanf:"output"`
	HistoryFile  string                  `koanf:"history_file"`

	// WatchDebounce is how long transpile --watch waits for writes to settle.
	WatchDebounce time.Duration `koanf:"watch_debounce"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Read:          DefaultRead,
		Write:         DefaultWrite,
		Unsupported:   format.UnsupportedWarn,
		CacheSize:     transpile.DefaultCacheSize,
		OutputFormat:  DefaultOutput,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// Validate checks dialect names and value ranges.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Read); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if _, err := dialect.Lookup(c.Write); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	switch c.OutputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.OutputFormat)
	}
	return nil
}

// Dialects resolves the read and write dialects.
func (c *Config) Dialects() (read, write *dialect.Dialect, err error) {
	if read, err = dialect.Lookup(c.Read); err != nil {
		return nil, nil, fmt.Errorf("read dialect: %w", err)
	}
	if write, err = dialect.Lookup(c.Write); err != nil {
		return nil, nil, fmt.Errorf("write dialect: %w", err)
	}
	return read, write, nil
}

// NewTranspiler builds a transpiler from the configuration.
func (c *Config) NewTranspiler(opts ...transpile.Option) (*transpile.Transpiler, error) {
	base := []transpile.Option{
		transpile.WithCacheSize(c.CacheSize),
		transpile.WithConcurrency(c.Concurrency),
		transpile.WithFormatOptions(
			format.WithUnsupportedLevel(c.Unsupported),
			format.WithNormalize(c.Normalize),
		),
	}
	return transpile.New(append(base, opts...)...)
}
