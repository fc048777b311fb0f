package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mcpweb/internal/agent"
	"mcpweb/internal/config"
)

var (
	agentEndpoint   string
	agentTransport  string
	agentConfigPath string
	agentVerbose    bool
	agentNoColor    bool
	agentJSONRPC    bool
)

// agentCmd represents the agent command
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Interactive MCP client for the mcpweb gateway",
	Long: `The agent command connects to a running mcpweb gateway and starts an
interactive REPL for exploring it: listing services, browsing and fetching
resources, searching, and invoking actions.

Elicitation requests raised by backends during invoke_action are answered
interactively at the terminal.

By default the agent connects to the endpoint derived from your mcpweb
configuration. Override it with --endpoint.

Transport options:
- streamable-http (default): HTTP-based transport, matches 'mcpweb serve'
- sse: Server-Sent Events transport with server notification support

Note: the gateway must be running (use 'mcpweb serve') before using this
command, or use 'mcpweb standalone' to run both in one process.`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().StringVar(&agentEndpoint, "endpoint", "", "Gateway MCP endpoint URL (default: from config)")
	agentCmd.Flags().StringVar(&agentTransport, "transport", string(agent.TransportStreamableHTTP), "Transport to use (streamable-http, sse)")
	agentCmd.Flags().StringVar(&agentConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	agentCmd.Flags().BoolVar(&agentVerbose, "verbose", false, "Enable verbose logging (show keepalive messages)")
	agentCmd.Flags().BoolVar(&agentNoColor, "no-color", false, "Disable colored output")
	agentCmd.Flags().BoolVar(&agentJSONRPC, "json-rpc", false, "Enable full JSON-RPC message logging")
}

// runAgent connects the interactive agent to a gateway and hands control to
// the REPL.
func runAgent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport, err := parseAgentTransport(agentTransport)
	if err != nil {
		return err
	}

	endpoint := agentEndpoint
	if endpoint == "" {
		cfg, err := config.LoadConfig(agentConfigPath)
		if err != nil {
			return err
		}
		endpoint = endpointFromConfig(cfg, transport)
	}

	logger := agent.NewLogger(agentVerbose, !agentNoColor, agentJSONRPC)
	client := agent.NewClient(endpoint, logger, transport)
	client.SetElicitationHandler(agent.NewElicitationPrompter(logger, os.Stdin))

	repl := agent.NewREPL(client, logger)
	if err := repl.Run(ctx); err != nil {
		return fmt.Errorf("REPL error: %w", err)
	}
	return nil
}

// parseAgentTransport validates the transport flag.
func parseAgentTransport(name string) (agent.TransportType, error) {
	switch name {
	case string(agent.TransportSSE):
		return agent.TransportSSE, nil
	case string(agent.TransportStreamableHTTP):
		return agent.TransportStreamableHTTP, nil
	default:
		return "", fmt.Errorf("unsupported transport: %s (supported: streamable-http, sse)", name)
	}
}

// endpointFromConfig derives the gateway endpoint from the configuration.
// The agent's transport choice picks the path: /mcp for streamable HTTP,
// /sse for SSE.
func endpointFromConfig(cfg config.Config, transport agent.TransportType) string {
	path := "/mcp"
	if transport == agent.TransportSSE {
		path = "/sse"
	}
	return fmt.Sprintf("http://%s:%d%s", cfg.Gateway.Host, cfg.Gateway.Port, path)
}
