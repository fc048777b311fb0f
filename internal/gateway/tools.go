package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools wires the five gateway tools onto the MCP server.
func (s *Server) registerTools() {
	listServicesTool := mcp.NewTool(ToolListServices,
		mcp.WithDescription("List all services registered with the gateway"),
	)
	s.mcpServer.AddTool(listServicesTool, s.handleListServices)

	listResourcesTool := mcp.NewTool(ToolListResources,
		mcp.WithDescription("List a service's instructions and resources"),
		mcp.WithString("service_name",
			mcp.Required(),
			mcp.Description("Name of the service to inspect"),
		),
	)
	s.mcpServer.AddTool(listResourcesTool, s.handleListResources)

	getResourceTool := mcp.NewTool(ToolGetResource,
		mcp.WithDescription("Retrieve the contents of a resource by address"),
		mcp.WithString("resource_uri",
			mcp.Required(),
			mcp.Description("Absolute resource address, e.g. mcpweb://email/inbox"),
		),
	)
	s.mcpServer.AddTool(getResourceTool, s.handleGetResource)

	searchResourcesTool := mcp.NewTool(ToolSearchResources,
		mcp.WithDescription("Search a service's resources and return matching addresses"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Search scope: a service name or any address within it"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
	)
	s.mcpServer.AddTool(searchResourcesTool, s.handleSearchResources)

	invokeActionTool := mcp.NewTool(ToolInvokeAction,
		mcp.WithDescription("Invoke a named action against a resource"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action name declared by the target service"),
		),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("Address of the resource the action applies to"),
		),
	)
	s.mcpServer.AddTool(invokeActionTool, s.handleInvokeAction)
}

func (s *Server) handleListServices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	backends := s.dispatcher.ListBackends(ctx)
	return jsonResult(map[string]any{
		"services": backends,
		"total":    len(backends),
	})
}

func (s *Server) handleListResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("service_name")
	if err != nil {
		return mcp.NewToolResultError("service_name argument is required"), nil
	}

	discovery, err := s.dispatcher.Discover(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(discovery)
}

func (s *Server) handleGetResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := request.RequireString("resource_uri")
	if err != nil {
		return mcp.NewToolResultError("resource_uri argument is required"), nil
	}

	payload, err := s.dispatcher.Fetch(ctx, uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, _, err := encodePayload(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required"), nil
	}

	results, err := s.dispatcher.Search(ctx, scope, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) handleInvokeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := request.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action argument is required"), nil
	}
	address, err := request.RequireString("resource_id")
	if err != nil {
		return mcp.NewToolResultError("resource_id argument is required"), nil
	}

	payload, err := s.dispatcher.Invoke(ctx, action, address)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, _, err := encodePayload(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// encodePayload renders a handler payload for transport. Strings pass
// through verbatim, everything else is JSON. The second return value is the
// MIME type.
func encodePayload(payload any) (string, string, error) {
	if text, ok := payload.(string); ok {
		return text, "text/plain", nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(data), "application/json", nil
}
