package config

import (
	"github.com/mvp-joe/sourcedoc/internal/extractor"
)

// Config represents the complete sourcedoc configuration.
// It can be loaded from .sourcedoc/config.yml with environment variable overrides.
type Config struct {
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Preview   PreviewConfig   `yaml:"preview" mapstructure:"preview"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which source files to document and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// OutputConfig defines where rendered Markdown is written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // relative to the project root unless absolute
}

// GeneratorConfig tunes the documentation generator.
type GeneratorConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`       // concurrent parse workers
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // parsed files kept in memory, keyed by content hash
}

// CatalogConfig controls the SQLite catalog of generated documents.
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"` // relative to the project root unless absolute
}

// PreviewConfig controls terminal rendering in `sourcedoc show`.
type PreviewConfig struct {
	Width int    `yaml:"width" mapstructure:"width"` // word wrap column
	Style string `yaml:"style" mapstructure:"style"` // "auto", "dark", "light", "notty"
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Code: defaultCodePatterns(),
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"docs/api/**",
			},
		},
		Output: OutputConfig{
			Dir: "docs/api",
		},
		Generator: GeneratorConfig{
			Workers:   4,
			CacheSize: 1000,
		},
		Catalog: CatalogConfig{
			Enabled: true,
			Path:    ".sourcedoc/catalog.db",
		},
		Preview: PreviewConfig{
			Width: 100,
			Style: "auto",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// defaultCodePatterns returns one "**/*.ext" pattern per extension the extractor recognizes.
func defaultCodePatterns() []string {
	exts := extractor.SupportedExtensions()
	patterns := make([]string, 0, len(exts))
	for _, ext := range exts {
		patterns = append(patterns, "**/*."+ext)
	}
	return patterns
}
