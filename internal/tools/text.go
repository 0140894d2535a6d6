package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/figrelay/figma-relay/internal/batch"
)

// SetTextContentArgs contains the arguments for the set_text_content tool.
type SetTextContentArgs struct {
	NodeID string `json:"nodeId" jsonschema:"The ID of the text node to modify"`
	Text   string `json:"text" jsonschema:"New text content"`
}

// TextReplacement is one nodeId/text pair of a bulk text update.
type TextReplacement struct {
	NodeID string `json:"nodeId" jsonschema:"The ID of the text node to modify"`
	Text   string `json:"text" jsonschema:"New text content"`
}

// SetMultipleTextContentsArgs contains the arguments for the
// set_multiple_text_contents tool.
type SetMultipleTextContentsArgs struct {
	Replacements []TextReplacement `json:"replacements" jsonschema:"Text replacements to apply"`
	FailFast     bool              `json:"failFast,omitempty" jsonschema:"Abort the whole batch on the first failure instead of recording it and continuing"`
}

// ScanTextNodesArgs contains the arguments for the scan_text_nodes tool.
type ScanTextNodesArgs struct {
	NodeID string `json:"nodeId" jsonschema:"The ID of the node whose subtree to scan"`
}

func registerSetTextContentTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_text_content",
		Description: "Set the text content of a single text node in Figma",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetTextContentArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		return r.execute(ctx, "set_text_content", args)
	})
}

func registerSetMultipleTextContentsTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_multiple_text_contents",
		Description: "Replace the text content of many text nodes in one call. Updates run with bounded concurrency; per-node failures are reported without aborting the rest unless failFast is set.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SetMultipleTextContentsArgs) (*mcp.CallToolResult, any, error) {
		if len(args.Replacements) == 0 {
			return errorResult("replacements is required"), nil, nil
		}

		results, err := batch.Run(ctx, args.Replacements, func(ctx context.Context, rep TextReplacement) (json.RawMessage, error) {
			return r.relay.SendCommand(ctx, "set_text_content", rep)
		}, batch.Options{SkipErrors: !args.FailFast})
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		succeeded := 0
		for _, res := range results {
			if res.Success {
				succeeded++
			}
		}
		return jsonResult(map[string]any{
			"total":     len(results),
			"succeeded": succeeded,
			"failed":    len(results) - succeeded,
			"results":   results,
		}), nil, nil
	})
}

func registerScanTextNodesTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_text_nodes",
		Description: "Scan a node's subtree for text nodes. Long scans report progress updates and stay alive as long as the plugin keeps reporting.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ScanTextNodesArgs) (*mcp.CallToolResult, any, error) {
		if args.NodeID == "" {
			return errorResult("nodeId is required"), nil, nil
		}
		return r.execute(ctx, "scan_text_nodes", args)
	})
}
