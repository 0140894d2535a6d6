package tools

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// JoinChannelArgs contains the arguments for the join_channel tool.
type JoinChannelArgs struct {
	Channel string `json:"channel,omitempty" jsonschema:"Channel name shown in the Figma plugin. Omit to generate a fresh channel."`
}

var channelNamePattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

func registerJoinChannelTool(server *mcp.Server, r *Registry) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "join_channel",
		Description: "Join the relay channel the Figma plugin is listening on. Required before any other tool can reach the document.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args JoinChannelArgs) (*mcp.CallToolResult, any, error) {
		if args.Channel != "" && !channelNamePattern.MatchString(args.Channel) {
			return errorResult("channel must be 8 lowercase alphanumeric characters"), nil, nil
		}

		// Rejoining always tears the old session down first; a transport
		// holds at most one active channel.
		if err := r.relay.Disconnect(); err != nil {
			r.logger.Warn().Err(err).Msg("disconnect before rejoin failed")
		}
		r.relay.SetChannel(args.Channel)

		if err := r.relay.Connect(ctx); err != nil {
			return errorResult("joining channel: " + err.Error()), nil, nil
		}
		return textResult(fmt.Sprintf("Joined channel %s", r.relay.Channel())), nil, nil
	})
}
