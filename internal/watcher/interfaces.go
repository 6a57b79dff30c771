package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching the root directory, calling callback with debounced file changes.
	// Paths passed to callback are absolute and sorted; deleted files are included.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Filter decides which paths the watcher cares about.
// Paths are slash-separated and relative to the watched root.
type Filter interface {
	// Matches reports whether a file should trigger regeneration.
	Matches(relPath string) bool

	// IgnoresDir reports whether a directory (and everything below it) is skipped.
	IgnoresDir(relPath string) bool
}
