package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/config"
	"github.com/mvp-joe/sourcedoc/internal/generator"
	"github.com/mvp-joe/sourcedoc/internal/watcher"
)

var watchOpts generateOptions

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Generate documentation and regenerate it as files change",
	Long: `Watch performs an initial generate, then watches the project tree and
regenerates the documents of changed source files. Documents of deleted files
are removed. Changes are batched over the watch.debounce_ms window.

Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, err := loadProject(args)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(nil)
		defer cancel()

		return runWatch(ctx, rootDir, cfg, watchOpts, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addGenerateFlags(watchCmd, &watchOpts)
}

// runWatch blocks until ctx is cancelled.
func runWatch(ctx context.Context, rootDir string, cfg *config.Config, opts generateOptions, out io.Writer, log *logrus.Logger) error {
	if err := opts.apply(cfg); err != nil {
		return err
	}
	if log == nil {
		log = newLogger(false)
	}

	ws, err := newWorkspace(rootDir, cfg, NewCLIProgressReporter(out, opts.quiet), log)
	if err != nil {
		return err
	}
	defer ws.Close()

	discovery := ws.gen.Discovery()
	fw, err := watcher.New(discovery.RootDir(), discovery, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Stop()

	// Changes made during the initial pass are held until it finishes.
	fw.Pause()
	if err := fw.Start(ctx, regenerateFunc(ctx, ws.gen, log)); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if _, err := ws.gen.Generate(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("initial generation failed: %w", err)
	}
	fw.Resume()

	log.WithField("root", rootDir).Info("Watching for changes")
	<-ctx.Done()
	log.Info("Watch mode stopped")
	return nil
}

// regenerateFunc returns the watcher callback: existing files are regenerated,
// missing ones have their documentation removed.
func regenerateFunc(ctx context.Context, gen *generator.Generator, log *logrus.Logger) func([]string) {
	var mu sync.Mutex
	return func(files []string) {
		mu.Lock()
		defer mu.Unlock()

		var changed, deleted []string
		for _, path := range files {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				deleted = append(deleted, path)
			} else {
				changed = append(changed, path)
			}
		}

		if len(deleted) > 0 {
			if err := gen.Remove(deleted); err != nil {
				log.WithError(err).Warn("failed to remove documentation")
			}
		}
		if len(changed) > 0 {
			if _, err := gen.GenerateFiles(ctx, changed); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("regeneration failed")
			}
		}
	}
}
