package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ExportNodeAsImageArgs contains the arguments for the export_node_as_image
// tool.
type ExportNodeAsImageArgs struct {
	NodeID string  `json:"nodeId" jsonschema:"The ID of the node to export"`
	Format string  `json:"format,omitempty" jsonschema:"Export format: PNG (default), JPG, SVG, or PDF"`
	Scale  float64 `json:"scale,omitempty" jsonschema:"Export scale for raster formats (default 1)"`
}

// exportResult is the plugin's reply to export_node_as_image.
type exportResult struct {
	ImageData string `json:"imageData"`
	MimeType  string `json:"mimeType"`
}

func registerExportNodeAsImageTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_node_as_image",
		Description: "Export a node as an image from Figma. Returns the image as MCP image content.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ExportNodeAsImageArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		switch args.Format {
		case "", "PNG", "JPG", "SVG", "PDF":
		default:
			return errorResult(fmt.Sprintf("unsupported format %q", args.Format)), nil, nil
		}

		params := map[string]any{"nodeId": args.NodeID}
		if args.Format != "" {
			params["format"] = args.Format
		}
		if args.Scale > 0 {
			params["scale"] = args.Scale
		}

		raw, err := r.relay.SendCommand(ctx, "export_node_as_image", params)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		var export exportResult
		if err := json.Unmarshal(raw, &export); err != nil {
			return errorResult("parsing export result: " + err.Error()), nil, nil
		}
		if export.ImageData == "" {
			return errorResult("plugin returned no image data"), nil, nil
		}

		data, err := base64.StdEncoding.DecodeString(export.ImageData)
		if err != nil {
			return errorResult("decoding image data: " + err.Error()), nil, nil
		}
		mimeType := export.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.ImageContent{Data: data, MIMEType: mimeType},
			},
		}, nil, nil
	})
}
