package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqldialect/pkg/format"
	"github.com/leapstack-labs/sqldialect/pkg/transpile"

	// Register the dialects referenced by the configurations below.
	_ "github.com/leapstack-labs/sqldialect/pkg/dialects/ansi"
	_ "github.com/leapstack-labs/sqldialect/pkg/dialects/databricks"
	_ "github.com/leapstack-labs/sqldialect/pkg/dialects/spark"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("read", "", "")
	flags.String("write", "", "")
	flags.String("unsupported", "", "")
	flags.Bool("normalize", false, "")
	flags.Int("cache-size", 0, "")
	flags.Int("concurrency", 0, "")
	flags.Bool("verbose", false, "")
	flags.String("output", "", "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sqldialect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, `
read: spark
write: ansi
unsupported: raise
cache_size: 10
concurrency: 2
watch_debounce: 1s
`)

	tests := []struct {
		name   string
		env    map[string]string
		flags  []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "file over defaults",
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "spark", cfg.Read)
				assert.Equal(t, "ansi", cfg.Write)
				assert.Equal(t, format.UnsupportedRaise, cfg.Unsupported)
				assert.Equal(t, 10, cfg.CacheSize)
				assert.Equal(t, 2, cfg.Concurrency)
				assert.Equal(t, time.Second, cfg.WatchDebounce)
				assert.Equal(t, DefaultOutput, cfg.OutputFormat)
			},
		},
		{
			name: "env over file",
			env:  map[string]string{"SQLDIALECT_WRITE": "databricks", "SQLDIALECT_CACHE_SIZE": "0"},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "spark", cfg.Read)
				assert.Equal(t, "databricks", cfg.Write)
				assert.Zero(t, cfg.CacheSize)
			},
		},
		{
			name:  "flags over env",
			env:   map[string]string{"SQLDIALECT_WRITE": "databricks", "SQLDIALECT_NORMALIZE": "false"},
			flags: []string{"--write", "spark", "--cache-size", "99", "--verbose", "--unsupported", "ignore", "--normalize"},
			verify: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Normalize)
				assert.Equal(t, "spark", cfg.Write)
				assert.Equal(t, 99, cfg.CacheSize)
				assert.True(t, cfg.Verbose)
				assert.Equal(t, format.UnsupportedIgnore, cfg.Unsupported)
				// Unset flags keep the file value.
				assert.Equal(t, "spark", cfg.Read)
				assert.Equal(t, 2, cfg.Concurrency)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := newFlags()
			require.NoError(t, flags.Parse(tt.flags))

			cfg, err := LoadConfig("", flags)
			require.NoError(t, err)
			assert.Equal(t, "sqldialect.yaml", GetConfigFileUsed())
			tt.verify(t, cfg)
		})
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	path := writeConfig(t, t.TempDir(), "read: databricks\noutput: yaml\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "databricks", cfg.Read)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown read dialect", "read: oracle\n", "unknown dialect"},
		{"empty write dialect", "write: ''\n", "dialect is required"},
		{"bad unsupported level", "unsupported: loud\n", "invalid unsupported level"},
		{"negative cache", "cache_size: -1\n", "cache_size must not be negative"},
		{"bad debounce", "watch_debounce: soon\n", "unable to decode config"},
		{"bad output", "output: xml\n", "invalid output format"},
		{"malformed yaml", "read: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			t.Chdir(dir)
			writeConfig(t, dir, tt.content)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Dialects(t *testing.T) {
	read, write, err := Default().Dialects()
	require.NoError(t, err)
	assert.Equal(t, "ansi", read.Name)
	assert.Equal(t, "databricks", write.Name)

	cfg := Default()
	cfg.Write = "oracle"
	_, _, err = cfg.Dialects()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write dialect")
}

func TestConfig_NewTranspiler(t *testing.T) {
	cfg := Default()
	cfg.Unsupported = format.UnsupportedRaise
	cfg.CacheSize = 0
	tr, err := cfg.NewTranspiler()
	require.NoError(t, err)

	_, err = tr.TranspileNamed("SELECT DATEADD(hour, 1, d) FROM t", "databricks", "spark")
	require.ErrorIs(t, err, format.ErrUnsupported)
	assert.Zero(t, tr.CacheLen())

	cfg = Default()
	tr, err = cfg.NewTranspiler(transpile.WithCacheSize(1))
	require.NoError(t, err)
	_, err = tr.TranspileNamed("SELECT 1", "ansi", "ansi")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.CacheLen())

	cfg = Default()
	cfg.Normalize = true
	tr, err = cfg.NewTranspiler()
	require.NoError(t, err)
	out, err := tr.TranspileNamed("SELECT Amount FROM Sales", "ansi", "databricks")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT amount FROM sales"}, out)
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, GetLogger(ctx))
	assert.Equal(t, Default(), GetConfig(ctx))

	cfg := Default()
	cfg.Read = "spark"
	logger := NewLogger(cfg)
	ctx = WithLogger(WithConfig(ctx, cfg), logger)
	assert.Same(t, cfg, GetConfig(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}
