package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/sourcedoc/internal/search"
	"github.com/mvp-joe/sourcedoc/internal/storage"
	"github.com/sirupsen/logrus"
)

// ServerName is the name the server reports to MCP clients.
const ServerName = "sourcedoc"

// ServerConfig configures an MCP server.
type ServerConfig struct {
	RootDir string  // Project root; parse/render read files relative to it
	Version string  // Reported to clients
	Catalog *sql.DB // Optional; enables sourcedoc_search and sourcedoc_symbols
}

// Server manages the MCP server lifecycle.
type Server struct {
	searcher search.Searcher
	mcp      *server.MCPServer
	logger   *logrus.Logger
}

// NewServer creates an MCP server and registers its tools.
// The search index is built from the catalog's documents at startup.
func NewServer(ctx context.Context, cfg ServerConfig, logger *logrus.Logger) (*Server, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		cfg.Version,
		server.WithToolCapabilities(true),
	)

	AddParseTool(mcpServer, cfg.RootDir)
	AddRenderTool(mcpServer, cfg.RootDir)

	s := &Server{mcp: mcpServer, logger: logger}
	if cfg.Catalog == nil {
		logger.Info("No catalog configured, search and symbol tools disabled")
		return s, nil
	}

	reader := storage.NewDocumentReader(cfg.Catalog)
	docs, err := reader.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog documents: %w", err)
	}
	searcher, err := search.New(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}
	s.searcher = searcher

	AddSearchTool(mcpServer, searcher)
	AddSymbolsTool(mcpServer, reader)

	logger.WithField("documents", len(docs)).Info("Search index loaded")
	return s, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("Received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the search index.
func (s *Server) Close() error {
	if s.searcher != nil {
		return s.searcher.Close()
	}
	return nil
}
