package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/search"
	"github.com/mvp-joe/sourcedoc/internal/storage"
)

var (
	searchOpts search.Options
	searchJSON bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over generated documentation",
	Long: `Search runs a bleve query over the Markdown stored in the catalog.

Supports field scoping (markdown:, description:, symbols:), boolean operators,
phrases, wildcards and fuzzy matching.

Examples:
  sourcedoc search checkout
  sourcedoc search 'symbols:Cart AND -description:test'
  sourcedoc search render --language typescript --path 'web/*'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, err := loadProject(nil)
		if err != nil {
			return err
		}
		db, err := openExistingCatalog(rootDir, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return runSearch(cmd.Context(), cmd.OutOrStdout(), db, strings.Join(args, " "), &searchOpts, searchJSON)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchOpts.Limit, "limit", "n", 15, "Maximum number of results (1-100)")
	searchCmd.Flags().StringVarP(&searchOpts.Language, "language", "l", "", "Restrict to one language")
	searchCmd.Flags().StringVarP(&searchOpts.FilePath, "path", "p", "", "Wildcard pattern over source paths")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
}

func runSearch(ctx context.Context, out io.Writer, db *sql.DB, query string, opts *search.Options, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := storage.NewDocumentReader(db).ListDocuments()
	if err != nil {
		return err
	}
	searcher, err := search.New(ctx, docs)
	if err != nil {
		return err
	}
	defer searcher.Close()

	results, err := searcher.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if asJSON {
		if results == nil {
			results = []*search.Result{}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%s (%s, score %.2f)\n", r.FilePath, r.Language, r.Score)
		fmt.Fprintf(out, "  %s\n", r.Description)
		fmt.Fprintf(out, "  → %s\n", r.OutputPath)
		for _, h := range r.Highlights {
			fmt.Fprintf(out, "    … %s\n", stripMarks(h))
		}
	}
	return nil
}

var markReplacer = strings.NewReplacer("<mark>", "", "</mark>", "", "\n", " ")

func stripMarks(s string) string {
	return strings.TrimSpace(markReplacer.Replace(s))
}
