// Package generator turns a source tree into Markdown documentation.
//
// Files are discovered with glob patterns, parsed and rendered concurrently on a
// bounded worker pool, written under the output directory and recorded in the
// catalog. Parses are cached by content hash so unchanged files are not re-parsed
// across runs of the same Generator (watch mode).
package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/sourcedoc/internal/config"
	"github.com/mvp-joe/sourcedoc/internal/extractor"
	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
	"github.com/mvp-joe/sourcedoc/internal/storage"
)

// Config holds generator settings resolved against a project root.
type Config struct {
	RootDir        string   // absolute project root
	OutputDir      string   // absolute output directory
	CodePatterns   []string // glob patterns for source files
	IgnorePatterns []string // glob patterns to skip
	Workers        int      // concurrent parse workers
	CacheSize      int      // parse cache capacity, 0 disables caching
}

// ConfigFromProject resolves project configuration against rootDir.
func ConfigFromProject(rootDir string, cfg *config.Config) *Config {
	return &Config{
		RootDir:        rootDir,
		OutputDir:      config.ResolvePath(rootDir, cfg.Output.Dir),
		CodePatterns:   cfg.Paths.Code,
		IgnorePatterns: cfg.Paths.Ignore,
		Workers:        cfg.Generator.Workers,
		CacheSize:      cfg.Generator.CacheSize,
	}
}

// Stats summarizes one generation pass.
type Stats struct {
	RunID        string
	FilesTotal   int
	FilesWritten int
	FilesCached  int // written from a cached parse
	FilesFailed  int
	Duration     time.Duration
	Documents    []*storage.Document // ordered by source path
}

// entry is a cached parse and its rendering.
type entry struct {
	parsed   *extraction.ParsedFile
	markdown string
}

// Generator renders documentation for a project.
type Generator struct {
	config    *Config
	discovery *FileDiscovery
	writer    *DocWriter
	logger    *logrus.Logger
	progress  ProgressReporter

	catalog   *storage.DocumentWriter // nil when the catalog is disabled
	catalogMu sync.Mutex              // SQLite takes one writer at a time

	cache        otter.Cache[string, entry]
	cacheEnabled bool
}

// Option customizes a Generator.
type Option func(*Generator)

// WithCatalog records runs, documents and symbols through w.
func WithCatalog(w *storage.DocumentWriter) Option {
	return func(g *Generator) { g.catalog = w }
}

// WithProgress reports progress to p.
func WithProgress(p ProgressReporter) Option {
	return func(g *Generator) {
		if p != nil {
			g.progress = p
		}
	}
}

// New creates a Generator. A nil logger discards output.
func New(cfg *Config, logger *logrus.Logger, opts ...Option) (*Generator, error) {
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	discovery, err := NewFileDiscovery(cfg.RootDir, cfg.CodePatterns, cfg.IgnorePatterns, alwaysIgnored(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}

	writer, err := NewDocWriter(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		config:    cfg,
		discovery: discovery,
		writer:    writer,
		logger:    logger,
		progress:  &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(g)
	}

	if cfg.CacheSize > 0 {
		g.cache, err = otter.MustBuilder[string, entry](cfg.CacheSize).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create parse cache: %w", err)
		}
		g.cacheEnabled = true
	}

	return g, nil
}

// alwaysIgnored lists the project directories that are never documented:
// the .sourcedoc directory and the output directory when it lives under the root.
func alwaysIgnored(cfg *Config) []string {
	dirs := []string{config.DirName}
	if rel, err := filepath.Rel(cfg.RootDir, cfg.OutputDir); err == nil {
		dirs = append(dirs, rel)
	}
	return dirs
}

// Discovery returns the file discovery used by Generate.
func (g *Generator) Discovery() *FileDiscovery {
	return g.discovery
}

// Close releases the parse cache.
func (g *Generator) Close() {
	if g.cacheEnabled {
		g.cache.Close()
	}
}

// Generate discovers every source file under the root and documents it.
func (g *Generator) Generate(ctx context.Context) (*Stats, error) {
	g.progress.OnDiscoveryStart()
	files, err := g.discovery.DiscoverFiles()
	if err != nil {
		return nil, err
	}
	g.progress.OnDiscoveryComplete(len(files))

	stats, err := g.GenerateFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	g.progress.OnComplete(stats)
	return stats, nil
}

// GenerateFiles documents the given absolute source paths.
// Per-file failures are logged and counted; only cancellation and catalog run
// bookkeeping errors abort the pass.
func (g *Generator) GenerateFiles(ctx context.Context, files []string) (*Stats, error) {
	start := time.Now()

	run, err := g.beginRun()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		RunID:      run.ID,
		FilesTotal: len(files),
		Documents:  []*storage.Document{},
	}
	g.progress.OnFileProcessingStart(len(files))

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.config.Workers, 1))

	for _, path := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			relPath := g.relPath(path)
			doc, cached, err := g.processFile(path, relPath, run.ID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				stats.FilesFailed++
				g.logger.WithFields(logrus.Fields{
					"file":  relPath,
					"error": err,
				}).Warn("failed to document file")
			} else {
				stats.FilesWritten++
				if cached {
					stats.FilesCached++
				}
				stats.Documents = append(stats.Documents, doc)
			}
			g.progress.OnFileProcessed(relPath)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(stats.Documents, func(i, j int) bool {
		return stats.Documents[i].FilePath < stats.Documents[j].FilePath
	})
	stats.Duration = time.Since(start)

	run.FilesTotal = stats.FilesTotal
	run.FilesWritten = stats.FilesWritten
	run.FilesCached = stats.FilesCached
	run.FilesFailed = stats.FilesFailed
	if err := g.finishRun(run); err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"run":      run.ID,
		"total":    stats.FilesTotal,
		"written":  stats.FilesWritten,
		"cached":   stats.FilesCached,
		"failed":   stats.FilesFailed,
		"duration": stats.Duration.Round(time.Millisecond),
	}).Info("documentation generated")

	return stats, nil
}

// Remove deletes the documentation and catalog entries of deleted source files.
func (g *Generator) Remove(files []string) error {
	var errs []error
	for _, path := range files {
		relPath := g.relPath(path)
		if err := g.writer.Remove(relPath); err != nil {
			errs = append(errs, err)
		}
		if g.catalog != nil {
			g.catalogMu.Lock()
			err := g.catalog.DeleteDocument(relPath)
			g.catalogMu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
		}
		g.logger.WithField("file", relPath).Debug("removed documentation")
	}
	return errors.Join(errs...)
}

// processFile reads, parses (or reuses a cached parse), renders, writes and records one file.
func (g *Generator) processFile(path, relPath, runID string) (*storage.Document, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	hash := contentHash(content)
	key := relPath + "@" + hash

	ent, cached := g.lookup(key)
	if !cached {
		parsed := extractor.ParseFileContent(string(content), relPath)
		ent = entry{parsed: parsed, markdown: extractor.RenderMarkdown(parsed)}
		g.store(key, ent)
	}

	outputPath, err := g.writer.Write(relPath, ent.markdown)
	if err != nil {
		return nil, false, err
	}

	doc, err := storage.NewDocument(ent.parsed, hash, g.displayPath(outputPath), ent.markdown, runID)
	if err != nil {
		return nil, false, err
	}

	if g.catalog != nil {
		g.catalogMu.Lock()
		err := g.catalog.WriteDocument(doc, storage.SymbolsFromParsed(ent.parsed))
		g.catalogMu.Unlock()
		if err != nil {
			return nil, false, err
		}
	}

	g.logger.WithFields(logrus.Fields{
		"file":     relPath,
		"language": ent.parsed.Language,
		"cached":   cached,
	}).Debug("documented file")

	return doc, cached, nil
}

func (g *Generator) lookup(key string) (entry, bool) {
	if !g.cacheEnabled {
		return entry{}, false
	}
	return g.cache.Get(key)
}

func (g *Generator) store(key string, ent entry) {
	if g.cacheEnabled {
		g.cache.Set(key, ent)
	}
}

func (g *Generator) beginRun() (*storage.Run, error) {
	if g.catalog == nil {
		return &storage.Run{ID: uuid.NewString(), RootDir: g.config.RootDir, StartedAt: time.Now().UTC()}, nil
	}
	g.catalogMu.Lock()
	defer g.catalogMu.Unlock()
	return g.catalog.BeginRun(g.config.RootDir)
}

func (g *Generator) finishRun(run *storage.Run) error {
	if g.catalog == nil {
		run.FinishedAt = time.Now().UTC()
		return nil
	}
	g.catalogMu.Lock()
	defer g.catalogMu.Unlock()
	return g.catalog.FinishRun(run)
}

// relPath returns path relative to the root in slash form, or path itself when outside the root.
func (g *Generator) relPath(path string) string {
	rel, err := filepath.Rel(g.config.RootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// displayPath is relPath for output files, keeping absolute paths outside the root.
func (g *Generator) displayPath(path string) string {
	rel, err := filepath.Rel(g.config.RootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
