package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for DocWriter:
// - OutputPath appends .md under the output directory
// - Write creates nested directories and leaves no temp files behind
// - Write replaces existing documents
// - Remove deletes documents and tolerates missing ones

func TestDocWriter(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "docs")
	w, err := NewDocWriter(out)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "pkg", "a.go.md"), w.OutputPath("pkg/a.go"))

	path, err := w.Write("pkg/a.go", "first\n")
	require.NoError(t, err)
	path, err = w.Write("pkg/a.go", "second\n")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(filepath.Join(out, "pkg"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.go.md", entries[0].Name())

	require.NoError(t, w.Remove("pkg/a.go"))
	require.NoError(t, w.Remove("pkg/a.go"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
