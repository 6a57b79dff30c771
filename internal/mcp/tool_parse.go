package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/sourcedoc/internal/extractor"
	"github.com/mvp-joe/sourcedoc/internal/extractor/extraction"
)

// AddParseTool registers the sourcedoc_parse tool with an MCP server.
// The tool returns the ParsedFile model of a source file as JSON.
func AddParseTool(s *server.MCPServer, rootDir string) {
	tool := mcp.NewTool(
		"sourcedoc_parse",
		mcp.WithDescription(`Extract the documentation model of a source file: file description, imports, constants, classes (with methods and properties) and top-level functions.

The language is chosen from the file extension of 'path'. Pass 'content' to parse text directly; otherwise the file is read from the project.

Supported extensions: ts, tsx, js, jsx, py, java, c, h, cpp, hpp, cs, php, rb, go, rs, swift.`),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the project root (extension selects the language)")),
		mcp.WithString("content",
			mcp.Description("Source text to parse instead of reading the file")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createParseHandler(rootDir))
}

// AddRenderTool registers the sourcedoc_render tool with an MCP server.
// The tool returns the Markdown document for a source file.
func AddRenderTool(s *server.MCPServer, rootDir string) {
	tool := mcp.NewTool(
		"sourcedoc_render",
		mcp.WithDescription(`Render the Markdown API documentation of a source file, the same document 'sourcedoc generate' writes.

Pass 'content' to render text directly; otherwise the file is read from the project.`),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the project root (extension selects the language)")),
		mcp.WithString("content",
			mcp.Description("Source text to render instead of reading the file")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createRenderHandler(rootDir))
}

func createParseHandler(rootDir string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parsed, errResult := parseRequest(rootDir, request)
		if errResult != nil {
			return errResult, nil
		}

		jsonData, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parsed file: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func createRenderHandler(rootDir string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parsed, errResult := parseRequest(rootDir, request)
		if errResult != nil {
			return errResult, nil
		}
		return mcp.NewToolResultText(extractor.RenderMarkdown(parsed)), nil
	}
}

// parseRequest resolves the path/content arguments and parses the source.
// User errors come back as a tool error result.
func parseRequest(rootDir string, request mcp.CallToolRequest) (*extraction.ParsedFile, *mcp.CallToolResult) {
	argsMap, err := argumentsMap(request)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	path, err := parseStringArg(argsMap, "path", true)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	content, err := parseStringArg(argsMap, "content", false)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	if _, given := argsMap["content"]; !given {
		content, err = readProjectFile(rootDir, path)
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
	}

	return extractor.ParseFileContent(content, filepath.ToSlash(path)), nil
}

// readProjectFile reads a file addressed relative to rootDir, refusing paths that escape it.
func readProjectFile(rootDir, path string) (string, error) {
	if rootDir == "" {
		return "", fmt.Errorf("content parameter is required when no project root is configured")
	}

	abs := filepath.Join(rootDir, filepath.FromSlash(path))
	rel, err := filepath.Rel(rootDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the project root", path)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
