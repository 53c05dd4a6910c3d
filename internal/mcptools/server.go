package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the four codemap tools registered.
func NewServer(svc *CodemapService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codemap",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "codemap_generate",
		Description: "Generate or refresh the documentation map for a source tree. Extracts symbols with tree-sitter, reconciles every document, writes the changes and rebuilds the graph index.",
	}, svc.Generate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "codemap_validate",
		Description: "Validate an existing documentation map: structure, file links, code links with line-drift tolerance, size limits and anchors. Read-only.",
	}, svc.Validate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "codemap_status",
		Description: "Summarize the health of a documentation map: per-level document counts, placeholder and orphan tallies, and the suggested next action.",
	}, svc.Status)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "codemap_query",
		Description: "Search the graph index for symbols by name fragment and list the documents referencing each match.",
	}, svc.Query)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
