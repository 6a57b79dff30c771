package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Default() code patterns cover every supported extension
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .sourcedoc/config.yml and .sourcedoc/config.yaml
// - LoadConfig() merges config file with defaults
// - Environment variables override config file values and defaults
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - Validate() rejects each invalid field with its sentinel error
// - Validate() reports every invalid field at once
// - ResolvePath() keeps absolute paths and joins relative ones

func writeConfig(t *testing.T, rootDir, name, content string) {
	t.Helper()
	dir := filepath.Join(rootDir, DirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "docs/api", cfg.Output.Dir)
	assert.Equal(t, 4, cfg.Generator.Workers)
	assert.Equal(t, 1000, cfg.Generator.CacheSize)
	assert.True(t, cfg.Catalog.Enabled)
	assert.Equal(t, ".sourcedoc/catalog.db", cfg.Catalog.Path)
	assert.Equal(t, 100, cfg.Preview.Width)
	assert.Equal(t, "auto", cfg.Preview.Style)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.Contains(t, cfg.Paths.Ignore, "node_modules/**")

	assert.NoError(t, Validate(cfg))
}

func TestDefault_CodePatternsCoverSupportedExtensions(t *testing.T) {
	cfg := Default()

	assert.Contains(t, cfg.Paths.Code, "**/*.go")
	assert.Contains(t, cfg.Paths.Code, "**/*.rb")
	assert.Contains(t, cfg.Paths.Code, "**/*.tsx")
	assert.Len(t, cfg.Paths.Code, 16)
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
paths:
  code:
    - "src/**/*.go"
  ignore:
    - "gen/**"
output:
  dir: site/reference
generator:
  workers: 2
  cache_size: 50
catalog:
  enabled: false
preview:
  width: 80
  style: dark
watch:
  debounce_ms: 250
`)

	cfg, err := LoadConfigFromDir(tempDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.go"}, cfg.Paths.Code)
	assert.Equal(t, []string{"gen/**"}, cfg.Paths.Ignore)
	assert.Equal(t, "site/reference", cfg.Output.Dir)
	assert.Equal(t, 2, cfg.Generator.Workers)
	assert.Equal(t, 50, cfg.Generator.CacheSize)
	assert.False(t, cfg.Catalog.Enabled)
	assert.Equal(t, 80, cfg.Preview.Width)
	assert.Equal(t, "dark", cfg.Preview.Style)
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", "output:\n  dir: out\n")

	cfg, err := LoadConfigFromDir(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "generator:\n  workers: 8\n")

	cfg, err := LoadConfigFromDir(tempDir)
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, 8, cfg.Generator.Workers)
	assert.Equal(t, defaults.Generator.CacheSize, cfg.Generator.CacheSize)
	assert.Equal(t, defaults.Output.Dir, cfg.Output.Dir)
	assert.Equal(t, defaults.Paths.Code, cfg.Paths.Code)
	assert.Equal(t, defaults.Catalog, cfg.Catalog)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "output:\n  dir: from-file\ngenerator:\n  workers: 2\n")

	t.Setenv("SOURCEDOC_OUTPUT_DIR", "from-env")
	t.Setenv("SOURCEDOC_GENERATOR_WORKERS", "6")

	cfg, err := LoadConfigFromDir(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, 6, cfg.Generator.Workers)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("SOURCEDOC_CATALOG_ENABLED", "false")
	t.Setenv("SOURCEDOC_PREVIEW_WIDTH", "120")
	t.Setenv("SOURCEDOC_WATCH_DEBOUNCE_MS", "100")

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)

	assert.False(t, cfg.Catalog.Enabled)
	assert.Equal(t, 120, cfg.Preview.Width)
	assert.Equal(t, 100, cfg.Watch.DebounceMs)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "output:\n  dir: [unclosed\n")

	_, err := LoadConfigFromDir(tempDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "generator:\n  workers: 0\n")

	_, err := LoadConfigFromDir(tempDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero workers", func(c *Config) { c.Generator.Workers = 0 }, ErrInvalidWorkers},
		{"negative workers", func(c *Config) { c.Generator.Workers = -1 }, ErrInvalidWorkers},
		{"negative cache size", func(c *Config) { c.Generator.CacheSize = -5 }, ErrInvalidCacheSize},
		{"empty output dir", func(c *Config) { c.Output.Dir = "  " }, ErrEmptyOutputDir},
		{"no code patterns", func(c *Config) { c.Paths.Code = nil }, ErrNoCodePatterns},
		{"blank code patterns", func(c *Config) { c.Paths.Code = []string{""} }, ErrNoCodePatterns},
		{"narrow preview", func(c *Config) { c.Preview.Width = 5 }, ErrInvalidPreviewWidth},
		{"wide preview", func(c *Config) { c.Preview.Width = 1000 }, ErrInvalidPreviewWidth},
		{"unknown style", func(c *Config) { c.Preview.Style = "neon" }, ErrInvalidPreviewStyle},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }, ErrInvalidDebounce},
		{"catalog without path", func(c *Config) { c.Catalog.Path = "" }, ErrEmptyCatalogPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_AcceptsZeroCacheAndDisabledCatalogWithoutPath(t *testing.T) {
	cfg := Default()
	cfg.Generator.CacheSize = 0
	cfg.Catalog.Enabled = false
	cfg.Catalog.Path = ""

	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	cfg := Default()
	cfg.Generator.Workers = 0
	cfg.Output.Dir = ""
	cfg.Preview.Width = 1

	err := Validate(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWorkers))
	assert.True(t, errors.Is(err, ErrEmptyOutputDir))
	assert.True(t, errors.Is(err, ErrInvalidPreviewWidth))
	assert.False(t, errors.Is(err, ErrNoCodePatterns))
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "catalog.db")

	assert.Equal(t, abs, ResolvePath("/project", abs))
	assert.Equal(t, filepath.Join("/project", "docs", "api"), ResolvePath("/project", "docs/api"))
}
