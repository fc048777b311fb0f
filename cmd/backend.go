package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcpweb/internal/config"
	"mcpweb/internal/gateway"
	"mcpweb/pkg/logging"
)

// defaultBackendPort keeps standalone backends off the gateway's port so
// both can run on one host.
const defaultBackendPort = 9000

var (
	backendHost      string
	backendPort      int
	backendTransport string
	backendDebug     bool
)

// backendCmd serves one built-in service as a standalone MCP backend.
var backendCmd = &cobra.Command{
	Use:   "backend <service>",
	Short: "Serve a built-in service as a standalone MCP backend",
	Long: `The backend command serves one of the built-in services (email, calendar)
as its own MCP server exposing the four backend operations: list_resources,
get_resource, search_resources and invoke_action.

A gateway elsewhere can register it as a proxied service:

  services:
    - name: email
      type: proxied
      url: http://localhost:9000/mcp

With --transport stdio the backend speaks MCP on stdin/stdout, so a
gateway can spawn it as a subprocess:

  services:
    - name: email
      type: proxied
      command: mcpweb
      args: ["backend", "email", "--transport", "stdio"]`,
	Args: cobra.ExactArgs(1),
	RunE: runBackend,
}

func init() {
	rootCmd.AddCommand(backendCmd)

	backendCmd.Flags().StringVar(&backendHost, "host", config.DefaultHost, "Host to bind the backend to")
	backendCmd.Flags().IntVar(&backendPort, "port", defaultBackendPort, "Port to bind the backend to")
	backendCmd.Flags().StringVar(&backendTransport, "transport", config.TransportStreamableHTTP, "Transport to serve on (streamable-http, sse, stdio)")
	backendCmd.Flags().BoolVar(&backendDebug, "debug", false, "Enable debug logging")
}

// runBackend serves the selected service until interrupted. Logging goes to
// stderr so stdio transports keep stdout clean for protocol traffic.
func runBackend(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if backendDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	svc, err := builtinService(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := gateway.NewBackendServer(gateway.ServerConfig{
		Version:   GetVersion(),
		Host:      backendHost,
		Port:      backendPort,
		Transport: backendTransport,
	}, svc, gateway.NewCodec(""))
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logging.Info("backend", "Serving '%s' at %s", svc.Name(), srv.Endpoint())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
