package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/storage"
)

var (
	symbolsKind  string
	symbolsLimit int
	symbolsJSON  bool
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols <prefix>",
	Short: "Look up documented symbols by name prefix",
	Long: `Symbols lists classes, methods, functions and constants recorded in the
catalog whose name starts with the given prefix (case-insensitive).

Examples:
  sourcedoc symbols Cart
  sourcedoc symbols parse --kind function`,
	Args: cobra.ExactArgs(1),
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

		return runSymbols(cmd.OutOrStdout(), db, args[0], symbolsKind, symbolsLimit, symbolsJSON)
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().StringVarP(&symbolsKind, "kind", "k", "", "Restrict to class, method, function or constant")
	symbolsCmd.Flags().IntVarP(&symbolsLimit, "limit", "n", storage.DefaultSymbolLimit, "Maximum number of results")
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "Print results as JSON")
}

func runSymbols(out io.Writer, db *sql.DB, prefix, kind string, limit int, asJSON bool) error {
	switch kind {
	case "", storage.KindClass, storage.KindMethod, storage.KindFunction, storage.KindConstant:
	default:
		return fmt.Errorf("unknown kind %q: expected class, method, function or constant", kind)
	}

	symbols, err := storage.NewDocumentReader(db).FindSymbols(prefix, kind, limit)
	if err != nil {
		return err
	}

	if asJSON {
		if symbols == nil {
			symbols = []*storage.Symbol{}
		}
		data, err := json.MarshalIndent(symbols, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal symbols: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(symbols) == 0 {
		fmt.Fprintln(out, "No symbols")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tSIGNATURE\tLOCATION")
	for _, s := range symbols {
		name := s.Name
		if s.Parent != "" {
			name = s.Parent + "." + s.Name
		}
		location := s.FilePath
		if s.Line > 0 {
			location = fmt.Sprintf("%s:%d", s.FilePath, s.Line)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Kind, name, s.Signature, location)
	}
	return tw.Flush()
}
