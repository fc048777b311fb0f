package gateway

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mcpweb/internal/service"
)

// NewBackendServer serves a single mounted service as its own MCP server
// exposing the four backend operations. The tool surface is exactly what
// startup validation probes for, so another gateway can register the
// endpoint as a proxied service.
func NewBackendServer(cfg ServerConfig, svc *service.Service, codec Codec) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("mcpweb-%s", svc.Name())
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	builder := NewBuilder(codec)
	if err := builder.Mount(svc); err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(svc.Instructions()),
	)

	s := &Server{
		config:     cfg,
		mcpServer:  mcpServer,
		dispatcher: NewDispatcher(builder.Build(), NewServerElicitor(mcpServer)),
	}
	tools := &backendTools{dispatcher: s.dispatcher, name: svc.Name()}
	tools.register(mcpServer)
	s.registerMountedResources()
	return s, nil
}

// backendTools serves the four backend operations for one mounted service.
type backendTools struct {
	dispatcher *Dispatcher
	name       string
}

func (t *backendTools) register(mcpServer *server.MCPServer) {
	listResourcesTool := mcp.NewTool(ToolListResources,
		mcp.WithDescription(fmt.Sprintf("List the '%s' service's instructions and resources", t.name)),
		mcp.WithString("service_name",
			mcp.Description("Accepted for compatibility; this backend serves a single service"),
		),
	)
	mcpServer.AddTool(listResourcesTool, t.handleListResources)

	getResourceTool := mcp.NewTool(ToolGetResource,
		mcp.WithDescription("Retrieve the contents of a resource by address"),
		mcp.WithString("resource_uri",
			mcp.Required(),
			mcp.Description("Absolute resource address"),
		),
	)
	mcpServer.AddTool(getResourceTool, t.handleGetResource)

	searchResourcesTool := mcp.NewTool(ToolSearchResources,
		mcp.WithDescription("Search the service's resources and return matching addresses"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithString("path",
			mcp.Description("Accepted for compatibility; the scope is always this service"),
		),
	)
	mcpServer.AddTool(searchResourcesTool, t.handleSearchResources)

	invokeActionTool := mcp.NewTool(ToolInvokeAction,
		mcp.WithDescription("Invoke a named action against a resource"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action name declared by the service"),
		),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("Address of the resource the action applies to"),
		),
	)
	mcpServer.AddTool(invokeActionTool, t.handleInvokeAction)
}

func (t *backendTools) handleListResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	discovery, err := t.dispatcher.Discover(ctx, t.name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(discovery)
}

func (t *backendTools) handleGetResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("resource_uri")
	if err != nil {
		return mcp.NewToolResultError("resource_uri argument is required"), nil
	}

	payload, err := t.dispatcher.Fetch(ctx, t.rebind(uri))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, _, err := encodePayload(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (t *backendTools) handleSearchResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required"), nil
	}

	results, err := t.dispatcher.Search(ctx, t.name, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (t *backendTools) handleInvokeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}
	address, err := request.RequireString("resource_id")
	if err != nil {
		return mcp.NewToolResultError("resource_id argument is required"), nil
	}

	payload, err := t.dispatcher.Invoke(ctx, action, t.rebind(address))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, _, err := encodePayload(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// rebind maps an incoming address onto the local service. A gateway may
// proxy this backend under a different name; the path alone identifies the
// resource here. Unparseable addresses pass through so the dispatcher
// reports them.
func (t *backendTools) rebind(address string) string {
	codec := t.dispatcher.registry.Codec()
	name, path, err := codec.Parse(address)
	if err != nil || name == t.name {
		return address
	}
	return codec.Build(t.name, path)
}
