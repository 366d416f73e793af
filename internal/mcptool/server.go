// Package mcptool exposes the idea vault over the Model Context
// Protocol so agent clients can capture ideas and read the taxonomy
// without going through Telegram or the HTTP gateway.
package mcptool

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ideavault/ideavault/internal/lifecycle"
)

var captureToolDef = mcp.NewTool("idea_capture",
	mcp.WithDescription("Capture a new idea into the vault. Returns the stored idea plus the next pipeline step."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The raw idea text to capture."),
	),
	mcp.WithString("source",
		mcp.Description("Origin label for the idea. Defaults to \"mcp\"."),
	),
)

var statsToolDef = mcp.NewTool("idea_stats",
	mcp.WithDescription("Vault statistics: idea counts by status and category, plus AI spend since the last ledger reset."),
)

var categoriesToolDef = mcp.NewTool("idea_categories",
	mcp.WithDescription("List the category taxonomy, optionally adding a new category first."),
	mcp.WithString("add",
		mcp.Description("Category name to add before listing."),
	),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"idea_capture": {
		def:     captureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"idea_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"idea_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates an MCP server with the vault tools registered.
func NewServer(svc *lifecycle.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ideavault",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(svc)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport. Blocks until the
// client closes the stream.
func Run(svc *lifecycle.Service, version string) error {
	return server.ServeStdio(NewServer(svc, version))
}
