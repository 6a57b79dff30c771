package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project directory holding config.yml and the catalog.
const DirName = ".sourcedoc"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SOURCEDOC_*)
// 2. Config file (.sourcedoc/config.yml or .sourcedoc/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, DirName))

	v.SetEnvPrefix("SOURCEDOC")
	v.AutomaticEnv()
	// SOURCEDOC_GENERATOR_WORKERS -> generator.workers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"output.dir",
		"generator.workers",
		"generator.cache_size",
		"catalog.enabled",
		"catalog.path",
		"preview.width",
		"preview.style",
		"watch.debounce_ms",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.code", defaults.Paths.Code)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("output.dir", defaults.Output.Dir)

	v.SetDefault("generator.workers", defaults.Generator.Workers)
	v.SetDefault("generator.cache_size", defaults.Generator.CacheSize)

	v.SetDefault("catalog.enabled", defaults.Catalog.Enabled)
	v.SetDefault("catalog.path", defaults.Catalog.Path)

	v.SetDefault("preview.width", defaults.Preview.Width)
	v.SetDefault("preview.style", defaults.Preview.Style)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// ResolvePath joins a configured path onto rootDir unless it is already absolute.
func ResolvePath(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
