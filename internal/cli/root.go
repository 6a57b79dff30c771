package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/config"
)

var (
	verbose bool
	logger  *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sourcedoc",
	Short: "sourcedoc - API documentation extracted from source code",
	Long: `sourcedoc scans source files in TypeScript, JavaScript, Python, Java, C, C++,
C#, PHP, Ruby, Go, Rust and Swift, extracts their classes, functions, constants
and doc comments, and renders one Markdown document per file.

Project settings live in .sourcedoc/config.yml and can be overridden with
SOURCEDOC_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger creates the stderr logger shared by every command.
func newLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// loadProject resolves the project root (first argument or the working
// directory) and loads its configuration.
func loadProject(args []string) (string, *config.Config, error) {
	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	info, err := os.Stat(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to access project root: %w", err)
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("project root %s is not a directory", rootDir)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return rootDir, cfg, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(onSignal func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			if onSignal != nil {
				onSignal()
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
