package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InfoArgs contains the arguments for the info tool.
type InfoArgs struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: text (default) or json"`
}

func registerInfoTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "info",
		Description: "Show connection status, joined channel, and available tool groups.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args InfoArgs) (*mcp.CallToolResult, any, error) {
		state := r.relay.State()
		channel := r.relay.Channel()

		if args.Format == "json" {
			return jsonResult(map[string]any{
				"state":   state.String(),
				"channel": channel,
			}), nil, nil
		}

		channelLine := channel
		if channelLine == "" {
			channelLine = "(none - use join_channel)"
		}
		text := fmt.Sprintf(`figma-relay
===========

Connection: %s
Channel:    %s

Tool Groups
-----------
Group    | Tools
-------- | --------
discovery| info, join_channel
document | get_document_info, get_selection, get_node_info, get_nodes_info
create   | create_rectangle, create_frame, create_text
modify   | set_fill_color, set_stroke_color, move_node, resize_node, set_corner_radius, delete_node
text     | set_text_content, set_multiple_text_contents, scan_text_nodes
export   | export_node_as_image

Quick Start
-----------
1. Open the relay plugin in Figma and note the channel name
2. join_channel(channel) - connect this server to the plugin
3. get_document_info() - confirm the document is reachable`, state, channelLine)

		return textResult(text), nil, nil
	})
}
