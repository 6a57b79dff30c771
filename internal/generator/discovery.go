package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery handles source discovery with glob patterns and ignore rules.
// Patterns are matched against slash-separated paths relative to the root.
type FileDiscovery struct {
	rootDir        string
	codePatterns   []compiledPattern
	ignorePatterns []compiledPattern
	alwaysIgnore   []string // relative directory prefixes, e.g. ".sourcedoc"
}

// NewFileDiscovery creates a new file discovery instance.
// alwaysIgnore lists directories (relative to rootDir) that are skipped regardless of patterns.
func NewFileDiscovery(rootDir string, codePatterns, ignorePatterns, alwaysIgnore []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.codePatterns, err = compilePatterns(codePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	for _, dir := range alwaysIgnore {
		dir = strings.Trim(filepath.ToSlash(filepath.Clean(dir)), "/")
		if dir != "" && dir != "." && !strings.HasPrefix(dir, "..") {
			fd.alwaysIgnore = append(fd.alwaysIgnore, dir)
		}
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// RootDir returns the directory discovery walks.
func (fd *FileDiscovery) RootDir() string {
	return fd.rootDir
}

// DiscoverFiles walks the directory tree and returns matching source files
// as absolute paths in lexical order.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if fd.IgnoresDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.Matches(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover files in %s: %w", fd.rootDir, err)
	}

	return files, nil
}

// Matches reports whether a slash-separated relative path is a source file to document.
func (fd *FileDiscovery) Matches(relPath string) bool {
	if fd.shouldIgnore(relPath) {
		return false
	}
	return fd.matchesAnyPattern(relPath, fd.codePatterns)
}

// IgnoresDir reports whether a slash-separated relative directory is skipped entirely.
func (fd *FileDiscovery) IgnoresDir(relPath string) bool {
	return relPath != "." && fd.shouldIgnore(relPath)
}

// shouldIgnore checks if a path matches any ignore pattern or lives under an always-ignored directory.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	for _, dir := range fd.alwaysIgnore {
		if relPath == dir || strings.HasPrefix(relPath, dir+"/") {
			return true
		}
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Root-level files: let "**/*.go" match "main.go" as well as "cmd/main.go".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			if simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
