package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/figrelay/figma-relay/internal/batch"
)

// GetNodeInfoArgs contains the arguments for the get_node_info tool.
type GetNodeInfoArgs struct {
	NodeID string `json:"nodeId" jsonschema:"The ID of the node to inspect, e.g. 1:23"`
}

// GetNodesInfoArgs contains the arguments for the get_nodes_info tool.
type GetNodesInfoArgs struct {
	NodeIDs []string `json:"nodeIds" jsonschema:"The IDs of the nodes to inspect"`
}

func registerGetDocumentInfoTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_document_info",
		Description: "Get detailed information about the current Figma document",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		return r.execute(ctx, "get_document_info", nil)
	})
}

func registerGetSelectionTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_selection",
		Description: "Get information about the current selection in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
		return r.execute(ctx, "get_selection", nil)
	})
}

func registerGetNodeInfoTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_node_info",
		Description: "Get detailed information about a specific node in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetNodeInfoArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		return r.execute(ctx, "get_node_info", map[string]any{"nodeId": args.NodeID})
	})
}

func registerGetNodesInfoTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_nodes_info",
		Description: "Get detailed information about multiple nodes in Figma. Fetches nodes concurrently and reports per-node failures without aborting the rest.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GetNodesInfoArgs) (*mcp.CallToolResult, any, error) {
		if len(args.NodeIDs) == 0 {
			return errorResult("nodeIds is required"), nil, nil
		}

		results, err := batch.Run(ctx, args.NodeIDs, func(ctx context.Context, nodeID string) (any, error) {
			res, err := r.relay.SendCommand(ctx, "get_node_info", map[string]any{"nodeId": nodeID})
			if err != nil {
				return nil, err
			}
			var decoded any
			if err := json.Unmarshal(res, &decoded); err != nil {
				return nil, err
			}
			return decoded, nil
		}, batch.Options{SkipErrors: true})
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		return jsonResult(map[string]any{"results": results}), nil, nil
	})
}
