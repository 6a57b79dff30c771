package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/config"
	"github.com/mvp-joe/sourcedoc/internal/generator"
)

// generateOptions holds command-line overrides shared by generate and watch.
type generateOptions struct {
	output    string
	workers   int
	noCatalog bool
	quiet     bool
}

var genOpts generateOptions

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [dir]",
	Short: "Generate Markdown documentation for a project",
	Long: `Generate discovers source files matching the configured globs, extracts
their documentation and writes one Markdown file per source file to
{output}/{relative path}.md. Runs, documents and symbols are recorded in the
catalog (.sourcedoc/catalog.db) for search and symbol lookup.

Unchanged files are served from an in-memory parse cache within one process.

Examples:
  # Document the current directory
  sourcedoc generate

  # Document another project into a custom directory
  sourcedoc generate ../service --output reference

  # Without progress output or catalog
  sourcedoc generate --quiet --no-catalog
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, err := loadProject(args)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(func() {
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling generation...")
		})
		defer cancel()

		_, err = runGenerate(ctx, rootDir, cfg, genOpts, cmd.OutOrStdout(), logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd, &genOpts)
}

func addGenerateFlags(cmd *cobra.Command, opts *generateOptions) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (overrides output.dir)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Concurrent parse workers (overrides generator.workers)")
	cmd.Flags().BoolVar(&opts.noCatalog, "no-catalog", false, "Do not record results in the catalog")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
}

// apply copies command-line overrides onto cfg.
func (o generateOptions) apply(cfg *config.Config) error {
	if o.output != "" {
		cfg.Output.Dir = o.output
	}
	if o.workers != 0 {
		cfg.Generator.Workers = o.workers
	}
	if o.noCatalog {
		cfg.Catalog.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// runGenerate documents every discovered file under rootDir.
func runGenerate(ctx context.Context, rootDir string, cfg *config.Config, opts generateOptions, out io.Writer, log *logrus.Logger) (*generator.Stats, error) {
	if err := opts.apply(cfg); err != nil {
		return nil, err
	}
	if opts.quiet && log != nil {
		log.SetLevel(logrus.WarnLevel)
	}

	ws, err := newWorkspace(rootDir, cfg, NewCLIProgressReporter(out, opts.quiet), log)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	stats, err := ws.gen.Generate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generation cancelled")
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if !opts.quiet {
		fmt.Fprintf(out, "  Output:  %s\n", config.ResolvePath(rootDir, cfg.Output.Dir))
	}
	return stats, nil
}
