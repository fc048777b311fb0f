package gateway

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mcpweb/internal/service"
)

// serverElicitor forwards elicitation requests to the MCP client on the
// other end of the serving session. The session travels in ctx, so a single
// elicitor serves all concurrent calls without blocking across them.
type serverElicitor struct {
	srv *server.MCPServer
}

// NewServerElicitor returns an Elicitor that relays prompts through the
// given MCP server to whichever client session originated the call.
func NewServerElicitor(srv *server.MCPServer) Elicitor {
	return &serverElicitor{srv: srv}
}

func (e *serverElicitor) Elicit(ctx context.Context, req ElicitRequest) (*service.ElicitResult, error) {
	var request mcp.ElicitationRequest
	request.Params.Message = req.Message
	request.Params.RequestedSchema = req.Schema

	result, err := e.srv.RequestElicitation(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("elicitation request failed: %w", err)
	}
	return &service.ElicitResult{
		Action:  string(result.Action),
		Content: contentMap(result.Content),
	}, nil
}

// contentMap normalizes answer content to a field map. Content is an object
// of field values per the protocol; anything else is kept under "value" so
// the answer still passes through.
func contentMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": v}
}
