// figma-relay is an MCP server that relays design commands to a Figma plugin
// over a local WebSocket relay.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/figrelay/figma-relay/internal/config"
	"github.com/figrelay/figma-relay/internal/logging"
	"github.com/figrelay/figma-relay/internal/tools"
	"github.com/figrelay/figma-relay/internal/transport"
)

const (
	serverName    = "figma-relay"
	serverVersion = "0.1.0"
)

var (
	flagConfig  string
	flagURL     string
	flagChannel string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "figma-relay",
	Short: "MCP server bridging AI clients to a Figma plugin over a WebSocket relay",
	Long: `figma-relay exposes Figma document operations as MCP tools.

It speaks stdio MCP toward the client and a channel-based WebSocket
protocol toward the relay the Figma plugin is connected to. Commands
are correlated by id, time out after the configured deadline, and the
connection reconnects automatically with exponential backoff.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", serverName, serverVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "relay WebSocket URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagChannel, "channel", "", "channel name to join (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagURL != "" {
		cfg.RelayURL = flagURL
	}
	if flagChannel != "" {
		cfg.Channel = flagChannel
	}
	if flagDebug {
		cfg.Debug = true
	}

	logger, closeLog := logging.New(cfg.Debug)
	defer closeLog()

	relay := transport.NewClient(transport.Config{
		URL:            cfg.RelayURL,
		Channel:        cfg.Channel,
		CommandTimeout: cfg.CommandTimeout.Std(),
		AutoReconnect:  cfg.Reconnect.Auto,
		Reconnect: transport.ReconnectPolicy{
			BaseDelay:       cfg.Reconnect.BaseDelay.Std(),
			MaxDelay:        cfg.Reconnect.MaxDelay.Std(),
			MaxAttempts:     cfg.Reconnect.MaxAttempts,
			PersistentDelay: cfg.Reconnect.PersistentDelay.Std(),
		},
	}, logger)
	defer relay.Disconnect()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	tools.NewRegistry(relay, logger).RegisterTools(server)

	// The relay may not be up yet. Tools report the failure per call and
	// join_channel establishes the session explicitly, so startup proceeds
	// either way.
	if err := relay.Connect(ctx); err != nil {
		logger.Warn().Err(err).Str("url", cfg.RelayURL).Msg("initial relay connection failed")
	} else {
		logger.Info().Str("channel", relay.Channel()).Msg("connected to relay")
	}

	logger.Info().Str("version", serverVersion).Msg("serving MCP on stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
