package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"mcpweb/internal/backend"
	"mcpweb/internal/config"
	"mcpweb/internal/gateway"
	"mcpweb/internal/service"
	"mcpweb/internal/services/calendar"
	"mcpweb/internal/services/email"
	"mcpweb/pkg/logging"
)

// serveConfigPath specifies the configuration directory. The directory
// holds config.yaml with the gateway settings and the service declarations.
var serveConfigPath string

// serveHost and servePort override the gateway bind address from the
// command line. They only apply when explicitly set.
var serveHost string
var servePort int

// serveTransport overrides the transport the gateway serves on.
var serveTransport string

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveSkipValidation registers proxied services without probing them.
// Every proxied service is treated as validated.
var serveSkipValidation bool

// serveWatchConfig watches config.yaml and logs when it changes on disk.
// The routing table is immutable after startup, so a change requires a
// restart to apply.
var serveWatchConfig bool

// serveSilent suppresses gateway logging entirely. Set by standalone mode
// so the REPL owns the terminal.
var serveSilent bool

// serveCmd defines the serve command structure. This is the main command
// of mcpweb: it assembles the service registry from configuration,
// validates proxied backends and serves the gateway tools over MCP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mcpweb gateway server",
	Long: `Starts the mcpweb gateway server.

The gateway aggregates backend services behind one MCP endpoint. Built-in
services declared as 'mounted' run in process; services declared as
'proxied' forward each call to an external MCP server. Proxied services
are probed once at startup for the four backend operations; services that
fail the probe stay listed but refuse calls.

Configuration is loaded from config.yaml in the configuration directory.
A minimal example:

  gateway:
    port: 8090
    transport: streamable-http
  services:
    - name: email
      type: mounted
    - name: wiki
      type: proxied
      url: http://localhost:9000/mcp

Without any configured services the gateway serves the built-in demo
services (email, calendar). Environment variables prefixed MCPWEB_
override the gateway section; command line flags override both.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	if !serveSilent {
		level := logging.LevelInfo
		if serveDebug {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, os.Stderr)
	}

	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, &cfg)

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

	if serveWatchConfig {
		watcher := config.NewWatcher(serveConfigPath, 0)
		if err := watcher.Start(ctx); err != nil {
			logging.Warn("serve", "Could not watch configuration: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	notifySystemd(daemon.SdNotifyReady)
	logging.Info("serve", "Gateway ready at %s", srv.Endpoint())

	<-ctx.Done()

	notifySystemd(daemon.SdNotifyStopping)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// applyServeFlags overlays explicitly set flags onto the loaded
// configuration. Flags win over both the config file and the environment.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Gateway.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Gateway.Port = servePort
	}
	if cmd.Flags().Changed("transport") {
		cfg.Gateway.Transport = serveTransport
	}
	if serveSkipValidation {
		cfg.Gateway.SkipValidation = true
	}
}

// buildGateway assembles the registry from configuration, runs startup
// validation and returns an unstarted server. An empty service list serves
// the built-in demo services.
func buildGateway(ctx context.Context, cfg config.Config) (*gateway.Server, error) {
	services := cfg.Services
	if len(services) == 0 {
		services = []config.ServiceConfig{
			{Name: "email", Type: config.ServiceTypeMounted},
			{Name: "calendar", Type: config.ServiceTypeMounted},
		}
	}

	builder := gateway.NewBuilder(gateway.NewCodec(cfg.Gateway.Scheme))
	for _, svc := range services {
		var err error
		switch svc.Type {
		case config.ServiceTypeMounted:
			err = mountBuiltin(builder, svc.Name)
		default:
			// Proxied is the default for declarations without a type.
			err = builder.AddProxy(svc.Name, clientConfig(svc))
		}
		if err != nil {
			return nil, fmt.Errorf("service '%s': %w", svc.Name, err)
		}
	}

	validator := gateway.NewValidator(0)
	if cfg.Gateway.SkipValidation {
		validator.SkipAll(builder)
	} else {
		validator.Run(ctx, builder)
	}

	return gateway.NewServer(gateway.ServerConfig{
		Name:      "mcpweb-gateway",
		Version:   GetVersion(),
		Host:      cfg.Gateway.Host,
		Port:      cfg.Gateway.Port,
		Transport: cfg.Gateway.Transport,
	}, builder.Build())
}

// builtinService resolves the name of a mounted service to its constructor.
func builtinService(name string) (*service.Service, error) {
	switch name {
	case "email":
		return email.New(), nil
	case "calendar":
		return calendar.New(), nil
	default:
		return nil, fmt.Errorf("unknown built-in service (available: email, calendar)")
	}
}

func mountBuiltin(builder *gateway.Builder, name string) error {
	svc, err := builtinService(name)
	if err != nil {
		return err
	}
	return builder.Mount(svc)
}

// clientConfig converts a proxied service declaration into a backend client
// config. The transport defaults to stdio when a command is set, otherwise
// streamable-http.
func clientConfig(svc config.ServiceConfig) backend.ClientConfig {
	transport := svc.Transport
	if transport == "" {
		if svc.Command != "" {
			transport = config.TransportStdio
		} else {
			transport = config.TransportStreamableHTTP
		}
	}
	return backend.ClientConfig{
		Type:    backend.Transport(transport),
		Command: svc.Command,
		Args:    svc.Args,
		Env:     svc.Env,
		URL:     svc.URL,
		Headers: svc.Headers,
	}
}

// notifySystemd reports lifecycle state when running under a systemd
// service with Type=notify. Outside systemd this is a no-op.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("serve", "Failed to notify systemd: %v", err)
	} else if sent {
		logging.Debug("serve", "Notified systemd: %s", state)
	}
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultHost, "Host to bind the gateway to")
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to bind the gateway to")
	serveCmd.Flags().StringVar(&serveTransport, "transport", config.TransportStreamableHTTP, "Transport to serve on (streamable-http, sse, stdio)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveSkipValidation, "skip-validation", false, "Register proxied services without probing them")
	serveCmd.Flags().BoolVar(&serveWatchConfig, "watch-config", false, "Log when the configuration file changes on disk")
}
