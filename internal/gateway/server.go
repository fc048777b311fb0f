package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"

	"mcpweb/internal/config"
	"mcpweb/pkg/logging"
)

// ServerConfig defines how the gateway server binds and serves.
type ServerConfig struct {
	Name      string // MCP server name reported to clients
	Version   string
	Host      string
	Port      int
	Transport string // stdio, sse or streamable-http
}

// Server exposes the dispatcher as an MCP server over the configured
// transport. Mounted resources are additionally registered as native MCP
// resources so clients can read them without going through get_resource.
type Server struct {
	config     ServerConfig
	dispatcher *Dispatcher
	mcpServer  *server.MCPServer

	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer
	httpServer           *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
	mu         sync.RWMutex
}

// NewServer creates the MCP server over a frozen registry: it renders the
// server instructions from the backend listing, wires the five gateway
// tools and registers mounted resources natively.
func NewServer(cfg ServerConfig, registry *Registry) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = "mcpweb-gateway"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	instructions, err := renderInstructions(registry.Codec().Scheme(), registry.Infos())
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(instructions),
	)

	s := &Server{
		config:     cfg,
		mcpServer:  mcpServer,
		dispatcher: NewDispatcher(registry, NewServerElicitor(mcpServer)),
	}
	s.registerTools()
	s.registerMountedResources()
	return s, nil
}

// Dispatcher returns the dispatcher serving this server's calls.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Start starts serving on the configured transport. It returns immediately;
// serving happens on background goroutines until Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("gateway server already started")
	}
	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	switch s.config.Transport {
	case config.TransportSSE:
		logging.Info("gateway", "Starting MCP gateway with SSE transport on %s", addr)
		baseURL := fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
		s.sseServer = server.NewSSEServer(
			s.mcpServer,
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		)
		s.httpServer = &http.Server{Addr: addr, Handler: corsHandler(s.sseServer)}
		httpServer := s.httpServer
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("gateway", err, "SSE server error")
			}
		}()

	case config.TransportStdio:
		logging.Info("gateway", "Starting MCP gateway with stdio transport")
		s.stdioServer = server.NewStdioServer(s.mcpServer)
		stdioServer := s.stdioServer
		serveCtx := s.ctx
		go func() {
			if err := stdioServer.Listen(serveCtx, os.Stdin, os.Stdout); err != nil {
				logging.Error("gateway", err, "Stdio server error")
			}
		}()

	case config.TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info("gateway", "Starting MCP gateway with streamable-http transport on %s", addr)
		s.streamableHTTPServer = server.NewStreamableHTTPServer(s.mcpServer)
		mux := http.NewServeMux()
		mux.Handle("/mcp", s.streamableHTTPServer)
		s.httpServer = &http.Server{Addr: addr, Handler: corsHandler(mux)}
		httpServer := s.httpServer
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("gateway", err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop stops the gateway server. HTTP transports get a graceful shutdown
// window; stdio serving stops on context cancellation.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.ctx == nil {
		s.mu.Unlock()
		return fmt.Errorf("gateway server not started")
	}
	cancelFunc := s.cancelFunc
	httpServer := s.httpServer
	s.ctx = nil
	s.cancelFunc = nil
	s.sseServer = nil
	s.streamableHTTPServer = nil
	s.stdioServer = nil
	s.httpServer = nil
	s.mu.Unlock()

	logging.Info("gateway", "Stopping MCP gateway server")

	if cancelFunc != nil {
		cancelFunc()
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("gateway", err, "Error shutting down HTTP server")
			return err
		}
	}

	return nil
}

// Endpoint returns the URL clients connect to for the configured transport.
func (s *Server) Endpoint() string {
	switch s.config.Transport {
	case config.TransportSSE:
		return fmt.Sprintf("http://%s:%d/sse", s.config.Host, s.config.Port)
	case config.TransportStdio:
		return "stdio"
	default:
		return fmt.Sprintf("http://%s:%d/mcp", s.config.Host, s.config.Port)
	}
}

// registerMountedResources registers every mounted resource natively so MCP
// clients see them in resources/list. Parameterized addresses register as
// resource templates.
func (s *Server) registerMountedResources() {
	for _, route := range s.dispatcher.registry.mountedRoutes() {
		for _, entry := range route.entries {
			if entry.template != nil {
				template := mcp.NewResourceTemplate(
					entry.address,
					entry.res.Name,
					mcp.WithTemplateDescription(entry.res.Description),
					mcp.WithTemplateMIMEType("application/json"),
				)
				s.mcpServer.AddResourceTemplate(template, s.readMountedResource)
				continue
			}
			resource := mcp.NewResource(
				entry.address,
				entry.res.Name,
				mcp.WithResourceDescription(entry.res.Description),
				mcp.WithMIMEType("application/json"),
			)
			s.mcpServer.AddResource(resource, s.readMountedResource)
		}
	}
}

// readMountedResource serves native resource reads through the dispatcher,
// so template matching and the proxied fetch fallback behave exactly like
// get_resource.
func (s *Server) readMountedResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload, err := s.dispatcher.Fetch(ctx, request.Params.URI)
	if err != nil {
		return nil, err
	}

	text, mimeType, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: mimeType,
			Text:     text,
		},
	}, nil
}

// corsHandler wraps HTTP transports so browser-based MCP clients can reach
// the gateway. The session header must be exposed for streamable-http.
func corsHandler(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
	}).Handler(next)
}
