package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CreateRectangleArgs contains the arguments for the create_rectangle tool.
type CreateRectangleArgs struct {
	X        float64 `json:"x" jsonschema:"X position"`
	Y        float64 `json:"y" jsonschema:"Y position"`
	Width    float64 `json:"width" jsonschema:"Width of the rectangle"`
	Height   float64 `json:"height" jsonschema:"Height of the rectangle"`
	Name     string  `json:"name,omitempty" jsonschema:"Optional name for the rectangle"`
	ParentID string  `json:"parentId,omitempty" jsonschema:"Optional parent node ID to append to"`
}

// CreateFrameArgs contains the arguments for the create_frame tool.
type CreateFrameArgs struct {
	X        float64 `json:"x" jsonschema:"X position"`
	Y        float64 `json:"y" jsonschema:"Y position"`
	Width    float64 `json:"width" jsonschema:"Width of the frame"`
	Height   float64 `json:"height" jsonschema:"Height of the frame"`
	Name     string  `json:"name,omitempty" jsonschema:"Optional name for the frame"`
	ParentID string  `json:"parentId,omitempty" jsonschema:"Optional parent node ID to append to"`
}

// CreateTextArgs contains the arguments for the create_text tool.
type CreateTextArgs struct {
	X        float64 `json:"x" jsonschema:"X position"`
	Y        float64 `json:"y" jsonschema:"Y position"`
	Text     string  `json:"text" jsonschema:"Text content"`
	FontSize float64 `json:"fontSize,omitempty" jsonschema:"Font size (default 14)"`
	Name     string  `json:"name,omitempty" jsonschema:"Optional name for the text node"`
	ParentID string  `json:"parentId,omitempty" jsonschema:"Optional parent node ID to append to"`
}

func registerCreateRectangleTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_rectangle",
		Description: "Create a new rectangle in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CreateRectangleArgs) (*mcp.CallToolResult, any, error) {
		if args.Width <= 0 || args.Height <= 0 {
			return errorResult("width and height must be positive"), nil, nil
		}
		return r.execute(ctx, "create_rectangle", args)
	})
}

func registerCreateFrameTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_frame",
		Description: "Create a new frame in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CreateFrameArgs) (*mcp.CallToolResult, any, error) {
		if args.Width <= 0 || args.Height <= 0 {
			return errorResult("width and height must be positive"), nil, nil
		}
		return r.execute(ctx, "create_frame", args)
	})
}

func registerCreateTextTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_text",
		Description: "Create a new text node in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CreateTextArgs) (*mcp.CallToolResult, any, error) {
		if args.Text == "" {
			return errorResult("text is required"), nil, nil
		}
		return r.execute(ctx, "create_text", args)
	})
}
