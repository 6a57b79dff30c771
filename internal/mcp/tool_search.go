package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/sourcedoc/internal/search"
)

// AddSearchTool registers the sourcedoc_search tool with an MCP server.
func AddSearchTool(s *server.MCPServer, searcher search.Searcher) {
	tool := mcp.NewTool(
		"sourcedoc_search",
		mcp.WithDescription(`Full-text keyword search over the generated documentation using bleve query syntax.

Supports:
- Field scoping: markdown:checkout, description:cart, symbols:render
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "shopping cart"
- Wildcards: Cart* (prefix matching)
- Fuzzy: chekout~1 (edit distance)

Examples:
- symbols:Cart - Files declaring a Cart class, method or function
- markdown:"error handling" AND -description:test
- checkout with language=go and file_path=internal/*`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string with field scoping and boolean operators")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithString("language",
			mcp.Description("Restrict to one language, e.g. go, typescript, python")),
		mcp.WithString("file_path",
			mcp.Description("Wildcard pattern over source paths, e.g. internal/*")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(searcher))
}

func createSearchHandler(searcher search.Searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, err := argumentsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query, err := parseStringArg(argsMap, "query", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		language, err := parseStringArg(argsMap, "language", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filePath, err := parseStringArg(argsMap, "file_path", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		results, err := searcher.Search(ctx, query, &search.Options{
			Limit:    parseClampedInt(argsMap, "limit", 15, 1, 100),
			Language: language,
			FilePath: filePath,
		})
		if errors.Is(err, search.ErrEmptyQuery) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		if results == nil {
			results = []*search.Result{}
		}

		response := &SearchResponse{
			Query:         query,
			Results:       results,
			TotalReturned: len(results),
			TookMs:        int(time.Since(startTime).Milliseconds()),
		}
		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// SearchResponse is the JSON payload of the sourcedoc_search tool.
type SearchResponse struct {
	Query         string           `json:"query"`
	Results       []*search.Result `json:"results"`
	TotalReturned int              `json:"totalReturned"`
	TookMs        int              `json:"tookMs"`
}
