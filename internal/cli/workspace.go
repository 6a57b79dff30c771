package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/sourcedoc/internal/config"
	"github.com/mvp-joe/sourcedoc/internal/generator"
	"github.com/mvp-joe/sourcedoc/internal/storage"
)

// workspace bundles a project's generator with its catalog connection.
type workspace struct {
	rootDir string
	cfg     *config.Config
	catalog *sql.DB // nil when the catalog is disabled
	gen     *generator.Generator
}

// newWorkspace opens the catalog (when enabled) and creates a generator for rootDir.
func newWorkspace(rootDir string, cfg *config.Config, progress generator.ProgressReporter, log *logrus.Logger) (*workspace, error) {
	ws := &workspace{rootDir: rootDir, cfg: cfg}

	opts := []generator.Option{generator.WithProgress(progress)}
	if cfg.Catalog.Enabled {
		db, err := storage.Open(config.ResolvePath(rootDir, cfg.Catalog.Path))
		if err != nil {
			return nil, err
		}
		ws.catalog = db
		opts = append(opts, generator.WithCatalog(storage.NewDocumentWriter(db)))
	}

	gen, err := generator.New(generator.ConfigFromProject(rootDir, cfg), log, opts...)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	ws.gen = gen
	return ws, nil
}

// Close releases the generator cache and the catalog connection.
func (ws *workspace) Close() error {
	if ws.gen != nil {
		ws.gen.Close()
	}
	if ws.catalog != nil {
		return ws.catalog.Close()
	}
	return nil
}

// errNoCatalog is returned by commands that read the catalog before one exists.
var errNoCatalog = errors.New("no catalog found")

// openExistingCatalog opens the project catalog for reading.
// It fails when the catalog is disabled or has not been generated yet.
func openExistingCatalog(rootDir string, cfg *config.Config) (*sql.DB, error) {
	if !cfg.Catalog.Enabled {
		return nil, fmt.Errorf("%w: catalog is disabled in configuration", errNoCatalog)
	}

	path := config.ResolvePath(rootDir, cfg.Catalog.Path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s: run 'sourcedoc generate' first", errNoCatalog, path)
		}
		return nil, fmt.Errorf("failed to access catalog: %w", err)
	}
	return storage.Open(path)
}
