package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/config"
	"github.com/mvp-joe/sourcedoc/internal/extractor"
)

var (
	showRaw  bool
	showJSON bool
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the documentation of one source file",
	Long: `Show parses a single source file and prints its Markdown documentation,
rendered for the terminal. Nothing is written to disk.

Examples:
  sourcedoc show internal/cart/cart.go
  sourcedoc show src/app.ts --raw
  sourcedoc show lib/util.py --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, err := loadProject(nil)
		if err != nil {
			return err
		}
		return runShow(cmd.OutOrStdout(), rootDir, args[0], cfg.Preview, showMode())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print plain Markdown")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the extracted model as JSON")
	showCmd.MarkFlagsMutuallyExclusive("raw", "json")
}

type outputMode int

const (
	modeRendered outputMode = iota
	modeRaw
	modeJSON
)

func showMode() outputMode {
	switch {
	case showJSON:
		return modeJSON
	case showRaw:
		return modeRaw
	default:
		return modeRendered
	}
}

// runShow documents path, displayed relative to rootDir when it lies inside it.
func runShow(out io.Writer, rootDir, path string, preview config.PreviewConfig, mode outputMode) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	parsed := extractor.ParseFileContent(string(content), displayPath(rootDir, path))

	switch mode {
	case modeJSON:
		data, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal parsed file: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case modeRaw:
		fmt.Fprint(out, extractor.RenderMarkdown(parsed))
	default:
		fmt.Fprintln(out, renderTerminal(extractor.RenderMarkdown(parsed), preview))
	}
	return nil
}

// renderTerminal renders Markdown with glamour, falling back to the plain text.
func renderTerminal(markdown string, preview config.PreviewConfig) string {
	styleOpt := glamour.WithAutoStyle()
	if preview.Style != "" && preview.Style != "auto" {
		styleOpt = glamour.WithStandardStyle(preview.Style)
	}

	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(preview.Width),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}

func displayPath(rootDir, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(rootDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
