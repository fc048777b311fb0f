package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// TransportType defines the transport type for MCP connections
type TransportType string

const (
	TransportSSE            TransportType = "sse"
	TransportStreamableHTTP TransportType = "streamable-http"
)

// ServiceInfo is one entry of the gateway's service listing.
type ServiceInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Resources int    `json:"resources,omitempty"`
	Validated *bool  `json:"validated,omitempty"`
}

// ServiceListing is the decoded list_services response.
type ServiceListing struct {
	Services []ServiceInfo `json:"services"`
	Total    int           `json:"total"`
}

// ResourceEntry is one resource row of a list_resources response.
type ResourceEntry struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts either a resource object or a bare address string,
// matching what backends are allowed to return.
func (re *ResourceEntry) UnmarshalJSON(data []byte) error {
	var address string
	if err := json.Unmarshal(data, &address); err == nil {
		re.Address = address
		return nil
	}
	type plain ResourceEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*re = ResourceEntry(p)
	return nil
}

// ServiceDiscovery is the decoded list_resources response.
type ServiceDiscovery struct {
	Service      string          `json:"service"`
	Instructions string          `json:"instructions"`
	Resources    []ResourceEntry `json:"resources"`
}

// Client is an MCP client for talking to the mcpweb gateway. It wraps the
// raw tool-call protocol with typed helpers for the gateway operations.
type Client struct {
	endpoint         string
	transport        TransportType
	logger           *Logger
	client           *client.Client
	elicitation      client.ElicitationHandler
	timeout          time.Duration
	NotificationChan chan mcp.JSONRPCNotification
}

// NewClient creates a new agent client with the specified transport
func NewClient(endpoint string, logger *Logger, transportType TransportType) *Client {
	return &Client{
		endpoint:         endpoint,
		transport:        transportType,
		logger:           logger,
		timeout:          30 * time.Second,
		NotificationChan: make(chan mcp.JSONRPCNotification, 10),
	}
}

// SetElicitationHandler installs the handler invoked when the gateway relays
// an elicitation request from a backend. Must be called before Connect.
func (c *Client) SetElicitationHandler(handler client.ElicitationHandler) {
	c.elicitation = handler
}

// GetEndpoint returns the endpoint the client connects to.
func (c *Client) GetEndpoint() string {
	return c.endpoint
}

// SupportsNotifications returns whether the transport delivers server
// notifications. Only SSE keeps a standing stream open.
func (c *Client) SupportsNotifications() bool {
	return c.transport == TransportSSE
}

// Connect establishes the connection and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	mcpClient, err := c.createAndConnectClient(ctx)
	if err != nil {
		return err
	}
	c.client = mcpClient

	if err := c.initialize(ctx); err != nil {
		c.client.Close()
		c.client = nil
		return fmt.Errorf("initialization failed: %w", err)
	}

	return nil
}

// createAndConnectClient creates and starts an MCP client based on transport type
func (c *Client) createAndConnectClient(ctx context.Context) (*client.Client, error) {
	var conn transport.Interface
	switch c.transport {
	case TransportSSE:
		sseTransport, err := transport.NewSSE(c.endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSE transport: %w", err)
		}
		conn = sseTransport

	case TransportStreamableHTTP:
		httpTransport, err := transport.NewStreamableHTTP(c.endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create streamable-http transport: %w", err)
		}
		conn = httpTransport

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", c.transport)
	}

	var opts []client.ClientOption
	if c.elicitation != nil {
		opts = append(opts, client.WithElicitationHandler(c.elicitation))
	}

	mcpClient := client.NewClient(conn, opts...)
	if err := mcpClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	mcpClient.OnNotification(func(notification mcp.JSONRPCNotification) {
		select {
		case c.NotificationChan <- notification:
		case <-ctx.Done():
		}
	})

	return mcpClient, nil
}

// initialize performs the MCP protocol handshake
func (c *Client) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "mcpweb-agent",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}

	if c.logger != nil {
		c.logger.Request("initialize", req.Params)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.Initialize(timeoutCtx, req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Initialize failed: %v", err)
		}
		return err
	}

	if c.logger != nil {
		c.logger.Response("initialize", result)
	}

	return nil
}

// CallTool executes a gateway tool and returns the raw result
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	if c.logger != nil {
		c.logger.Request("tools/call", request.Params)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.CallTool(timeoutCtx, request)
	if err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}

	if c.logger != nil {
		c.logger.Response("tools/call", result)
	}

	return result, nil
}

// CallToolText executes a tool and returns the text content as a string.
// Error results become Go errors carrying the gateway's message.
func (c *Client) CallToolText(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	result, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", err
	}

	var output []string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			output = append(output, textContent.Text)
		}
	}
	text := strings.Join(output, "\n")

	if result.IsError {
		return "", fmt.Errorf("%s", text)
	}
	return text, nil
}

// CallToolJSON executes a tool and returns the result as parsed JSON.
// Non-JSON results come back as the raw string.
func (c *Client) CallToolJSON(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	text, err := c.CallToolText(ctx, name, args)
	if err != nil {
		return nil, err
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return text, nil
	}
	return parsed, nil
}

// ListServices returns the gateway's service listing.
func (c *Client) ListServices(ctx context.Context) (*ServiceListing, error) {
	text, err := c.CallToolText(ctx, "list_services", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return parseServiceListing(text)
}

// ListResources returns a service's instructions and resource table.
func (c *Client) ListResources(ctx context.Context, service string) (*ServiceDiscovery, error) {
	text, err := c.CallToolText(ctx, "list_resources", map[string]interface{}{
		"service_name": service,
	})
	if err != nil {
		return nil, err
	}
	return parseServiceDiscovery(text)
}

// GetResource fetches a resource by address and returns its raw content.
func (c *Client) GetResource(ctx context.Context, address string) (string, error) {
	return c.CallToolText(ctx, "get_resource", map[string]interface{}{
		"resource_uri": address,
	})
}

// SearchResources searches within a scope and returns matching addresses.
func (c *Client) SearchResources(ctx context.Context, scope, query string) ([]string, error) {
	text, err := c.CallToolText(ctx, "search_resources", map[string]interface{}{
		"path":  scope,
		"query": query,
	})
	if err != nil {
		return nil, err
	}
	return parseAddresses(text)
}

// InvokeAction invokes an action against a resource and returns the raw
// result content.
func (c *Client) InvokeAction(ctx context.Context, action, address string) (string, error) {
	return c.CallToolText(ctx, "invoke_action", map[string]interface{}{
		"action":      action,
		"resource_id": address,
	})
}

// Close closes the connection
func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}

func parseServiceListing(data string) (*ServiceListing, error) {
	var listing ServiceListing
	if err := json.Unmarshal([]byte(data), &listing); err != nil {
		return nil, fmt.Errorf("unexpected list_services response: %w", err)
	}
	return &listing, nil
}

func parseServiceDiscovery(data string) (*ServiceDiscovery, error) {
	var discovery ServiceDiscovery
	if err := json.Unmarshal([]byte(data), &discovery); err != nil {
		return nil, fmt.Errorf("unexpected list_resources response: %w", err)
	}
	return &discovery, nil
}

func parseAddresses(data string) ([]string, error) {
	var addresses []string
	if err := json.Unmarshal([]byte(data), &addresses); err != nil {
		return nil, fmt.Errorf("unexpected search_resources response: %w", err)
	}
	return addresses, nil
}

// PrettyJSON pretty-prints JSON content for display. Non-JSON input passes
// through unchanged.
func PrettyJSON(raw string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return string(b)
}
