package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/sourcedoc/internal/storage"
)

// SymbolFinder looks up catalog symbols by name prefix.
// Implemented by *storage.DocumentReader.
type SymbolFinder interface {
	FindSymbols(prefix, kind string, limit int) ([]*storage.Symbol, error)
}

var symbolKinds = map[string]bool{
	storage.KindClass:    true,
	storage.KindMethod:   true,
	storage.KindFunction: true,
	storage.KindConstant: true,
}

// AddSymbolsTool registers the sourcedoc_symbols tool with an MCP server.
func AddSymbolsTool(s *server.MCPServer, finder SymbolFinder) {
	tool := mcp.NewTool(
		"sourcedoc_symbols",
		mcp.WithDescription(`Look up documented symbols (classes, methods, functions, constants) by case-insensitive name prefix.

Each result carries the source file, line, owning class for methods, rendered signature and description.`),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name prefix to match, e.g. Cart or parse")),
		mcp.WithString("kind",
			mcp.Description("Restrict to one kind: class, method, function or constant"),
			mcp.Enum(storage.KindClass, storage.KindMethod, storage.KindFunction, storage.KindConstant)),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-500, default: 50)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSymbolsHandler(finder))
}

func createSymbolsHandler(finder SymbolFinder) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, err := argumentsMap(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, err := parseStringArg(argsMap, "name", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind, err := parseStringArg(argsMap, "kind", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if kind != "" && !symbolKinds[kind] {
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q: expected class, method, function or constant", kind)), nil
		}

		symbols, err := finder.FindSymbols(name, kind, parseClampedInt(argsMap, "limit", storage.DefaultSymbolLimit, 1, 500))
		if err != nil {
			return nil, fmt.Errorf("symbol lookup failed: %w", err)
		}
		if symbols == nil {
			symbols = []*storage.Symbol{}
		}

		jsonData, err := json.Marshal(&SymbolsResponse{
			Name:          name,
			Kind:          kind,
			Symbols:       symbols,
			TotalReturned: len(symbols),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// SymbolsResponse is the JSON payload of the sourcedoc_symbols tool.
type SymbolsResponse struct {
	Name          string            `json:"name"`
	Kind          string            `json:"kind,omitempty"`
	Symbols       []*storage.Symbol `json:"symbols"`
	TotalReturned int               `json:"totalReturned"`
}
