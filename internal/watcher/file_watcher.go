package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period used when New is given a non-positive debounce.
const DefaultDebounce = 500 * time.Millisecond

// fileWatcher implements FileWatcher interface.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	rootDir       string               // Directory watched recursively
	filter        Filter               // Decides which files and directories matter
	debounceTime  time.Duration        // Quiet period before firing callback
	logger        *logrus.Logger       // Warnings for unwatched directories and fsnotify errors
	callback      func(files []string) // Callback to invoke with changed files
	ctx           context.Context      // Context for lifecycle management
	cancel        context.CancelFunc   // Cancel function for internal context
	paused        bool                 // Whether watching is paused
	pausedMu      sync.RWMutex         // Protects paused flag
	accumulated   map[string]bool      // Accumulated file changes
	accumulatedMu sync.Mutex           // Protects accumulated map
	debounceTimer *time.Timer          // Current debounce timer
	timerMu       sync.Mutex           // Protects debounce timer
	stopOnce      sync.Once            // Ensures Stop() is idempotent
	doneCh        chan struct{}        // Signals watch goroutine has finished
}

// New creates a file watcher for rootDir and every non-ignored directory below it.
// A nil logger discards output.
func New(rootDir string, filter Filter, debounce time.Duration, logger *logrus.Logger) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	fw := &fileWatcher{
		watcher:      watcher,
		rootDir:      rootDir,
		filter:       filter,
		debounceTime: debounce,
		logger:       logger,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	if err := fw.addDirectoriesRecursively(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			// Never started, close doneCh manually
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if !wasPaused {
		return
	}
	if files := fw.drain(); len(files) > 0 && fw.callback != nil {
		fw.callback(files)
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories must be added to the watcher explicitly.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.WithField("dir", event.Name).WithError(err).Warn("failed to watch new directory")
					}
					continue
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.WithError(err).Warn("file watcher error")
		}
	}
}

// handleDebounceExpired is called when the debounce timer expires.
func (fw *fileWatcher) handleDebounceExpired() {
	fw.pausedMu.RLock()
	paused := fw.paused
	fw.pausedMu.RUnlock()

	if paused {
		// Keep accumulating until Resume
		return
	}

	if files := fw.drain(); len(files) > 0 && fw.callback != nil {
		fw.callback(files)
	}
}

// drain returns the accumulated files in sorted order and clears them.
func (fw *fileWatcher) drain() []string {
	fw.accumulatedMu.Lock()
	defer fw.accumulatedMu.Unlock()

	if len(fw.accumulated) == 0 {
		return nil
	}
	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)

	sort.Strings(files)
	return files
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps write, create, remove and rename events for matching files.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	rel, ok := fw.relPath(event.Name)
	return ok && fw.filter.Matches(rel)
}

func (fw *fileWatcher) relPath(path string) (string, bool) {
	rel, err := filepath.Rel(fw.rootDir, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addDirectoriesRecursively adds every non-ignored directory in the tree to the watcher.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			fw.logger.WithField("path", path).WithError(err).Warn("error accessing path")
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if rel, ok := fw.relPath(path); ok && fw.filter.IgnoresDir(rel) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.WithField("dir", path).WithError(err).Warn("failed to watch directory")
		}
		return nil
	})
}
