package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// execute forwards a command over the relay and renders the outcome. Errors
// become textual tool errors: the MCP client has no other error channel, so
// nothing may escape as a Go error across the protocol boundary.
func (r *Registry) execute(ctx context.Context, command string, params any) (*mcp.CallToolResult, any, error) {
	result, err := r.relay.SendCommand(ctx, command, params)
	if err != nil {
		r.logger.Warn().Err(err).Str("command", command).Msg("command failed")
		return errorResult(err.Error()), nil, nil
	}
	return textResult(string(result)), nil, nil
}

// textResult wraps plain text as a successful tool response.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// jsonResult renders v as JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("encoding result: " + err.Error())
	}
	return textResult(string(data))
}

// errorResult wraps a failure description as a tool error response.
func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}
