package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RGBA is a color with 0-1 component ranges, matching Figma's paint model.
type RGBA struct {
	R float64 `json:"r" jsonschema:"Red component (0-1)"`
	G float64 `json:"g" jsonschema:"Green component (0-1)"`
	B float64 `json:"b" jsonschema:"Blue component (0-1)"`
	A float64 `json:"a,omitempty" jsonschema:"Alpha component (0-1, default 1)"`
}

func (c RGBA) valid() bool {
	inRange := func(v float64) bool { return v >= 0 && v <= 1 }
	return inRange(c.R) && inRange(c.G) && inRange(c.B) && inRange(c.A)
}

// SetColorArgs contains the arguments for the fill and stroke color tools.
type SetColorArgs struct {
	NodeID string  `json:"nodeId" jsonschema:"The ID of the node to modify"`
	Color  RGBA    `json:"color" jsonschema:"The color to apply"`
	Weight float64 `json:"weight,omitempty" jsonschema:"Stroke weight (stroke color only)"`
}

// MoveNodeArgs contains the arguments for the move_node tool.
type MoveNodeArgs struct {
	NodeID string  `json:"nodeId" jsonschema:"The ID of the node to move"`
	X      float64 `json:"x" jsonschema:"New X position"`
	Y      float64 `json:"y" jsonschema:"New Y position"`
}

// ResizeNodeArgs contains the arguments for the resize_node tool.
type ResizeNodeArgs struct {
	NodeID string  `json:"nodeId" jsonschema:"The ID of the node to resize"`
	Width  float64 `json:"width" jsonschema:"New width"`
	Height float64 `json:"height" jsonschema:"New height"`
}

// SetCornerRadiusArgs contains the arguments for the set_corner_radius tool.
type SetCornerRadiusArgs struct {
	NodeID  string  `json:"nodeId" jsonschema:"The ID of the node to modify"`
	Radius  float64 `json:"radius" jsonschema:"Corner radius in pixels"`
	Corners []bool  `json:"corners,omitempty" jsonschema:"Which corners to apply to: [topLeft, topRight, bottomRight, bottomLeft]"`
}

// DeleteNodeArgs contains the arguments for the delete_node tool.
type DeleteNodeArgs struct {
	NodeID string `json:"nodeId" jsonschema:"The ID of the node to delete"`
}

func registerSetFillColorTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_fill_color",
		Description: "Set the fill color of a node in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetColorArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		if !args.Color.valid() {
			return errorResult("color components must be in 0-1 range"), nil, nil
		}
		return r.execute(ctx, "set_fill_color", map[string]any{
			"nodeId": args.NodeID,
			"color":  args.Color,
		})
	})
}

func registerSetStrokeColorTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_stroke_color",
		Description: "Set the stroke color and weight of a node in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetColorArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		if !args.Color.valid() {
			return errorResult("color components must be in 0-1 range"), nil, nil
		}
		params := map[string]any{
			"nodeId": args.NodeID,
			"color":  args.Color,
		}
		if args.Weight > 0 {
			params["weight"] = args.Weight
		}
		return r.execute(ctx, "set_stroke_color", params)
	})
}

func registerMoveNodeTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_node",
		Description: "Move a node to a new position in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MoveNodeArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		return r.execute(ctx, "move_node", args)
	})
}

func registerResizeNodeTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resize_node",
		Description: "Resize a node in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ResizeNodeArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		if args.Width <= 0 || args.Height <= 0 {
			return errorResult("width and height must be positive"), nil, nil
		}
		return r.execute(ctx, "resize_node", args)
	})
}

func registerSetCornerRadiusTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_corner_radius",
		Description: "Set the corner radius of a node in Figma, optionally per-corner",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetCornerRadiusArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		if args.Radius < 0 {
			return errorResult("radius must not be negative"), nil, nil
		}
		if len(args.Corners) != 0 && len(args.Corners) != 4 {
			return errorResult("corners must list exactly four booleans"), nil, nil
		}
		return r.execute(ctx, "set_corner_radius", args)
	})
}

func registerDeleteNodeTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_node",
		Description: "Delete a node from Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DeleteNodeArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		return r.execute(ctx, "delete_node", args)
	})
}
