package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// route is the per-backend operation contract. The registry selects the
// variant (mounted or proxied) once at registration, so dispatch never
// inspects backend kinds at runtime.
type route interface {
	// info returns the backend's listing entry.
	info() BackendInfo
	// discover returns the backend's instructions and resource table.
	discover(ctx context.Context) (*Discovery, error)
	// fetch reads one resource by absolute address.
	fetch(ctx context.Context, session *Bridge, address string) (any, error)
	// search returns addresses of resources matching the query.
	search(ctx context.Context, query string) ([]string, error)
	// invoke performs a named action against a resource address.
	invoke(ctx context.Context, session *Bridge, action, address string) (any, error)
}

// decodeToolResult unpacks a forwarded tool result into a payload. Text
// content carrying JSON is decoded; other text passes through verbatim. A
// result marked as error becomes an error carrying the remote message.
func decodeToolResult(res *mcp.CallToolResult) (any, error) {
	text := resultText(res)
	if res.IsError {
		return nil, fmt.Errorf("%s", text)
	}
	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return text, nil
	}
	return payload, nil
}

// resultText concatenates the text content of a tool result.
func resultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var text string
	for _, content := range res.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			text += tc.Text
		}
	}
	return text
}
