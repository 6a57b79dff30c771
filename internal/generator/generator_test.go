package generator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/sourcedoc/internal/config"
	"github.com/mvp-joe/sourcedoc/internal/storage"
)

// Test Plan for Generator:
// - Generate writes one .md per discovered file under the output directory
// - Documents are recorded in the catalog with their symbols and the run counters
// - Unreadable files are counted as failures without aborting the run
// - A second pass over unchanged files is served from the parse cache; edited files are re-parsed
// - A zero cache size disables caching
// - Remove deletes output files and catalog entries
// - Progress callbacks fire once per file
// - Cancellation aborts the pass

var sampleTree = map[string]string{
	"main.go":        "// Command demo.\npackage main\n\nfunc main() {}\n",
	"lib/shape.ts":   "/** A shape. */\nexport class Shape {\n  area(): number { return 0; }\n}\n",
	"tools/build.py": "\"\"\"Build helpers.\"\"\"\ndef build(target: str) -> None:\n    pass\n",
}

func newTestConfig(t *testing.T, root string) *Config {
	t.Helper()
	cfg := ConfigFromProject(root, config.Default())
	cfg.Workers = 2
	return cfg
}

type recordingProgress struct {
	NoOpProgressReporter
	mu        sync.Mutex
	total     int
	processed []string
	completed *Stats
}

func (r *recordingProgress) OnFileProcessingStart(total int) { r.total = total }

func (r *recordingProgress) OnFileProcessed(relPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, relPath)
}

func (r *recordingProgress) OnComplete(stats *Stats) { r.completed = stats }

func TestGenerate_WritesDocumentsAndCatalog(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)
	db := storage.NewTestDB(t)
	progress := &recordingProgress{}

	g, err := New(newTestConfig(t, root), nil,
		WithCatalog(storage.NewDocumentWriter(db)),
		WithProgress(progress))
	require.NoError(t, err)
	defer g.Close()

	stats, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesTotal)
	assert.Equal(t, 3, stats.FilesWritten)
	assert.Equal(t, 0, stats.FilesCached)
	assert.Equal(t, 0, stats.FilesFailed)
	require.Len(t, stats.Documents, 3)
	assert.Equal(t, "lib/shape.ts", stats.Documents[0].FilePath)
	assert.Equal(t, "docs/api/lib/shape.ts.md", stats.Documents[0].OutputPath)

	data, err := os.ReadFile(filepath.Join(root, "docs", "api", "tools", "build.py.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Documentation: tools/build.py\n\nBuild helpers.\n")

	reader := storage.NewDocumentReader(db)
	docs, err := reader.ListDocuments()
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	symbols, err := reader.FindSymbols("area", storage.KindMethod, 0)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "Shape", symbols[0].Parent)

	run, err := reader.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, stats.RunID, run.ID)
	assert.Equal(t, 3, run.FilesWritten)

	assert.Equal(t, 3, progress.total)
	assert.ElementsMatch(t, []string{"main.go", "lib/shape.ts", "tools/build.py"}, progress.processed)
	assert.Same(t, stats, progress.completed)
}

func TestGenerate_SkipsOwnOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)
	cfg := newTestConfig(t, root)
	cfg.IgnorePatterns = nil
	cfg.CodePatterns = append(cfg.CodePatterns, "**/*.md")

	g, err := New(cfg, nil)
	require.NoError(t, err)
	defer g.Close()

	_, err = g.Generate(context.Background())
	require.NoError(t, err)
	stats, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesTotal)
}

func TestGenerate_CountsUnreadableFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.go"), filepath.Join(root, "broken.go")))

	g, err := New(newTestConfig(t, root), nil)
	require.NoError(t, err)
	defer g.Close()

	stats, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.FilesTotal)
	assert.Equal(t, 3, stats.FilesWritten)
	assert.Equal(t, 1, stats.FilesFailed)
}

func TestGenerate_ReusesCachedParses(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)

	g, err := New(newTestConfig(t, root), nil)
	require.NoError(t, err)
	defer g.Close()

	ctx := context.Background()
	_, err = g.Generate(ctx)
	require.NoError(t, err)

	second, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, second.FilesWritten)
	assert.Equal(t, 3, second.FilesCached)

	writeTree(t, root, map[string]string{"main.go": "// Command demo v2.\npackage main\n"})
	third, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, third.FilesCached)

	data, err := os.ReadFile(filepath.Join(root, "docs", "api", "main.go.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Command demo v2.")
}

func TestGenerate_CacheDisabled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)
	cfg := newTestConfig(t, root)
	cfg.CacheSize = 0

	g, err := New(cfg, nil)
	require.NoError(t, err)
	defer g.Close()

	ctx := context.Background()
	_, err = g.Generate(ctx)
	require.NoError(t, err)
	second, err := g.Generate(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, second.FilesCached)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)
	db := storage.NewTestDB(t)

	g, err := New(newTestConfig(t, root), nil, WithCatalog(storage.NewDocumentWriter(db)))
	require.NoError(t, err)
	defer g.Close()

	_, err = g.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, g.Remove([]string{filepath.Join(root, "main.go")}))

	_, err = os.Stat(filepath.Join(root, "docs", "api", "main.go.md"))
	assert.True(t, os.IsNotExist(err))

	doc, err := storage.NewDocumentReader(db).GetDocument("main.go")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGenerateFiles_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, sampleTree)

	g, err := New(newTestConfig(t, root), nil)
	require.NoError(t, err)
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.GenerateFiles(ctx, []string{filepath.Join(root, "main.go")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresDirectories(t *testing.T) {
	t.Parallel()

	_, err := New(&Config{OutputDir: "/tmp/out"}, nil)
	assert.Error(t, err)

	_, err = New(&Config{RootDir: t.TempDir()}, nil)
	assert.Error(t, err)
}
