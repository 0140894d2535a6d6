// Package tools implements the MCP tools for figma-relay. Every tool follows
// the same contract: validate typed arguments, forward a named command over
// the relay transport, and render the plugin's JSON result as text content.
package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/figrelay/figma-relay/internal/transport"
)

// Relay is the transport surface the tools depend on. *transport.Client
// satisfies it; tests substitute a fake.
type Relay interface {
	Connect(ctx context.Context) error
	Disconnect() error
	SendCommand(ctx context.Context, command string, params any) (json.RawMessage, error)
	State() transport.State
	Channel() string
	SetChannel(name string)
}

// Registry holds shared state for all tools.
type Registry struct {
	relay  Relay
	logger zerolog.Logger
}

// NewRegistry creates a new tool registry.
func NewRegistry(relay Relay, logger zerolog.Logger) *Registry {
	return &Registry{
		relay:  relay,
		logger: logger.With().Str("component", "tools").Logger(),
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(server *mcp.Server) {
	// Discovery tools
	registerInfoTool(server, r)
	registerJoinChannelTool(server, r)

	// Document tools
	registerGetDocumentInfoTool(server, r)
	registerGetSelectionTool(server, r)
	registerGetNodeInfoTool(server, r)
	registerGetNodesInfoTool(server, r)

	// Creation tools
	registerCreateRectangleTool(server, r)
	registerCreateFrameTool(server, r)
	registerCreateTextTool(server, r)

	// Modification tools
	registerSetFillColorTool(server, r)
	registerSetStrokeColorTool(server, r)
	registerMoveNodeTool(server, r)
	registerResizeNodeTool(server, r)
	registerSetCornerRadiusTool(server, r)
	registerDeleteNodeTool(server, r)

	// Text tools
	registerSetTextContentTool(server, r)
	registerSetMultipleTextContentsTool(server, r)
	registerScanTextNodesTool(server, r)

	// Export tools
	registerExportNodeAsImageTool(server, r)
}
