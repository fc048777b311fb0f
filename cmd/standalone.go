package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcpweb/internal/agent"
	"mcpweb/internal/config"
)

// standaloneCmd defines the standalone command structure. It starts the
// gateway and the interactive agent in a single process.
var standaloneCmd = &cobra.Command{
	Use:   "standalone",
	Short: "Start the gateway and the interactive agent in one process",
	Long: `Standalone mode starts the mcpweb gateway and connects the interactive
agent to it in a single process. Gateway logging is silenced so the REPL
owns the terminal; quitting the agent shuts the gateway down.`,
	Args: cobra.NoArgs,
	RunE: runStandalone,
}

// runStandalone is the main entry point for the standalone command.
func runStandalone(cmd *cobra.Command, args []string) error {
	// Disable serve logging
	serveSilent = true

	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, &cfg)
	// The in-process agent needs an HTTP endpoint to dial.
	if cfg.Gateway.Transport == config.TransportStdio {
		cfg.Gateway.Transport = config.TransportStreamableHTTP
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := buildGateway(ctx, cfg)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(shutdownCtx)
	}()

	logger := agent.NewLogger(agentVerbose, !agentNoColor, agentJSONRPC)
	client := agent.NewClient(srv.Endpoint(), logger, transportFor(cfg.Gateway.Transport))
	client.SetElicitationHandler(agent.NewElicitationPrompter(logger, os.Stdin))

	repl := agent.NewREPL(client, logger)
	if err := repl.Run(ctx); err != nil {
		return fmt.Errorf("REPL error: %w", err)
	}
	return nil
}

// transportFor maps a gateway transport to the matching agent transport.
func transportFor(transport string) agent.TransportType {
	if transport == config.TransportSSE {
		return agent.TransportSSE
	}
	return agent.TransportStreamableHTTP
}

// init registers the standalone command and its flags with the root
// command. Serve flags are inherited first, so shared names like
// --transport keep their serve semantics.
func init() {
	rootCmd.AddCommand(standaloneCmd)

	standaloneCmd.Flags().AddFlagSet(serveCmd.Flags())
	standaloneCmd.Flags().AddFlagSet(agentCmd.Flags())
}
