package backend

import (
	"context"
	"fmt"
)

// Transport identifies how a proxied backend's MCP server is reached.
type Transport string

const (
	// TransportStdio runs the backend as a local subprocess.
	TransportStdio Transport = "stdio"
	// TransportSSE connects to a remote server over Server-Sent Events.
	TransportSSE Transport = "sse"
	// TransportStreamableHTTP connects to a remote server over streamable HTTP.
	TransportStreamableHTTP Transport = "streamable-http"
)

// ClientConfig describes how to reach one proxied backend.
type ClientConfig struct {
	// Type selects the transport.
	Type Transport
	// Command is the executable path for stdio backends
	Command string
	// Args are the command line arguments for stdio backends
	Args []string
	// Env contains environment variables for stdio backends
	Env map[string]string
	// URL is the endpoint for remote backends (streamable-http, sse)
	URL string
	// Headers are HTTP headers for remote backends
	Headers map[string]string
}

// NewClient creates the appropriate MCP client for the config. Returns an
// error if the transport type is not recognized or the config is incomplete
// for it.
func NewClient(cfg ClientConfig) (Client, error) {
	switch cfg.Type {
	case TransportStdio:
		if cfg.Command == "" {
			return nil, fmt.Errorf("command is required for stdio type")
		}
		return NewStdioClient(cfg.Command, cfg.Args, cfg.Env), nil

	case TransportStreamableHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required for streamable-http type")
		}
		return NewStreamableHTTPClient(cfg.URL, cfg.Headers), nil

	case TransportSSE:
		if cfg.URL == "" {
			return nil, fmt.Errorf("url is required for sse type")
		}
		return NewSSEClient(cfg.URL, cfg.Headers), nil

	default:
		return nil, fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			cfg.Type, TransportStdio, TransportStreamableHTTP, TransportSSE)
	}
}

// Connect creates a client for the config and performs the protocol
// handshake. The caller owns the returned client and must Close it.
func Connect(ctx context.Context, cfg ClientConfig) (Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
