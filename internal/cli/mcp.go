package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sourcedoc/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for documentation tools",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants extract and browse the documentation of your codebase.

Tools:
- sourcedoc_parse: extracted model of a file as JSON
- sourcedoc_render: Markdown documentation of a file
- sourcedoc_search: full-text search over the catalog
- sourcedoc_symbols: symbol lookup by name prefix

Search and symbol tools need a catalog from 'sourcedoc generate'.
Communicates via stdio (standard MCP transport).

Example:
  sourcedoc mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, cfg, err := loadProject(nil)
	if err != nil {
		return err
	}

	var db *sql.DB
	db, err = openExistingCatalog(rootDir, cfg)
	switch {
	case errors.Is(err, errNoCatalog):
		logger.WithError(err).Warn("Starting without catalog")
	case err != nil:
		return err
	default:
		defer db.Close()
	}

	server, err := mcp.NewServer(ctx, mcp.ServerConfig{
		RootDir: rootDir,
		Version: Version,
		Catalog: db,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
