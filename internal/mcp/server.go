package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Koifit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Koifit workout tracker. List training days, inspect the session in progress, read a session's logged sets and look up what was lifted last time on a slot."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListDays, Handler: h.listDays},
		server.ServerTool{Tool: toolGetActiveSession, Handler: h.getActiveSession},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetPreviousAttempt, Handler: h.getPreviousAttempt},
	)

	s.AddResources(
		server.ServerResource{Resource: resDays, Handler: h.daysResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resDays = mcp.NewResource(
	"koifit://days",
	"Training Days",
	mcp.WithResourceDescription("All training days ordered by their position in the rotation"),
	mcp.WithMIMEType("application/json"),
)
