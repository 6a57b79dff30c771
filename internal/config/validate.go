package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrEmptyOutputDir indicates a missing output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrInvalidCacheSize indicates a negative parse cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrNoCodePatterns indicates that no source glob patterns are configured
	ErrNoCodePatterns = errors.New("no code patterns")

	// ErrInvalidPreviewWidth indicates a preview width outside the supported range
	ErrInvalidPreviewWidth = errors.New("invalid preview width")

	// ErrInvalidPreviewStyle indicates an unknown glamour style name
	ErrInvalidPreviewStyle = errors.New("invalid preview style")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrEmptyCatalogPath indicates the catalog is enabled without a path
	ErrEmptyCatalogPath = errors.New("empty catalog path")
)

const (
	minPreviewWidth = 20
	maxPreviewWidth = 400
)

var validPreviewStyles = map[string]bool{
	"auto":  true,
	"dark":  true,
	"light": true,
	"notty": true,
}

// Validate checks that the configuration is valid and complete.
// Every failing field is reported; errors.Is matches each sentinel.
func Validate(cfg *Config) error {
	return errors.Join(
		validatePaths(&cfg.Paths),
		validateOutput(&cfg.Output),
		validateGenerator(&cfg.Generator),
		validateCatalog(&cfg.Catalog),
		validatePreview(&cfg.Preview),
		validateWatch(&cfg.Watch),
	)
}

func validatePaths(cfg *PathsConfig) error {
	for _, p := range cfg.Code {
		if strings.TrimSpace(p) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: at least one paths.code pattern is required", ErrNoCodePatterns)
}

func validateOutput(cfg *OutputConfig) error {
	if strings.TrimSpace(cfg.Dir) == "" {
		return fmt.Errorf("%w: output.dir is required", ErrEmptyOutputDir)
	}
	return nil
}

func validateGenerator(cfg *GeneratorConfig) error {
	var errs []error

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	// Zero disables the parse cache.
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	return errors.Join(errs...)
}

func validateCatalog(cfg *CatalogConfig) error {
	if cfg.Enabled && strings.TrimSpace(cfg.Path) == "" {
		return fmt.Errorf("%w: catalog.path is required when the catalog is enabled", ErrEmptyCatalogPath)
	}
	return nil
}

func validatePreview(cfg *PreviewConfig) error {
	var errs []error

	if cfg.Width < minPreviewWidth || cfg.Width > maxPreviewWidth {
		errs = append(errs, fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidPreviewWidth, minPreviewWidth, maxPreviewWidth, cfg.Width))
	}

	if !validPreviewStyles[strings.ToLower(cfg.Style)] {
		errs = append(errs, fmt.Errorf("%w: must be one of auto, dark, light, notty, got '%s'",
			ErrInvalidPreviewStyle, cfg.Style))
	}

	return errors.Join(errs...)
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMs < 0 {
		return fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.DebounceMs)
	}
	return nil
}
