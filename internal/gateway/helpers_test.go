package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"mcpweb/internal/backend"
	"mcpweb/internal/service"
)

// fakeBackendClient scripts a proxied backend's MCP server for tests.
type fakeBackendClient struct {
	mu      sync.Mutex
	tools   []mcp.Tool
	results map[string]*mcp.CallToolResult
	listErr error
	callErr error
	calls   []fakeCall
	closed  int
}

type fakeCall struct {
	tool string
	args map[string]interface{}
}

func (f *fakeBackendClient) Initialize(ctx context.Context) error { return nil }

func (f *fakeBackendClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeBackendClient) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tools, nil
}

func (f *fakeBackendClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{tool: name, args: args})
	f.mu.Unlock()

	if f.callErr != nil {
		return nil, f.callErr
	}
	result, ok := f.results[name]
	if !ok {
		return nil, fmt.Errorf("no scripted result for tool %s", name)
	}
	return result, nil
}

// fakeDialer hands out the same scripted client on every dial so tests can
// count connections and inspect recorded calls.
type fakeDialer struct {
	mu      sync.Mutex
	client  *fakeBackendClient
	dialErr error
	dials   int
}

func (d *fakeDialer) dial(ctx context.Context) (backend.Client, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.client, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// requiredToolSet returns the tool listing of a conforming backend.
func requiredToolSet() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(RequiredTools))
	for _, name := range RequiredTools {
		tools = append(tools, mcp.Tool{Name: name})
	}
	return tools
}

// jsonToolResult wraps v, marshaled to JSON, in a successful tool result.
func jsonToolResult(t *testing.T, v any) *mcp.CallToolResult {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return mcp.NewToolResultText(string(data))
}

// addFakeProxy registers a proxied backend backed by the dialer, optionally
// pre-marking it valid as the validator would.
func addFakeProxy(t *testing.T, b *Builder, name string, dialer *fakeDialer, valid bool) {
	t.Helper()
	require.NoError(t, b.addProxyRoute(name, &proxiedRoute{
		name:  name,
		dial:  dialer.dial,
		valid: valid,
	}))
}

// newLibraryService is the mounted fixture used across gateway tests: one
// static resource, one templated resource, search and a single action.
func newLibraryService() *service.Service {
	svc := service.New("library", "Borrow and browse books")
	svc.Resource("/catalog", "Catalog", "All books", func(ctx context.Context, req *service.Request) (any, error) {
		return map[string]any{"books": []string{"/book/1", "/book/2"}}, nil
	})
	svc.Resource("/book/{book_id}", "Book", "One book by id", func(ctx context.Context, req *service.Request) (any, error) {
		return map[string]any{"id": req.Param("book_id")}, nil
	})
	svc.Search(func(ctx context.Context, query string) ([]string, error) {
		return []string{"/book/1"}, nil
	})
	svc.Action("checkout", func(ctx context.Context, call *service.ActionCall) (any, error) {
		return map[string]any{"status": "checked_out", "address": call.Address}, nil
	})
	return svc
}

// fakeElicitor records the request and answers with a scripted result.
type fakeElicitor struct {
	req    ElicitRequest
	result *service.ElicitResult
	err    error
}

func (f *fakeElicitor) Elicit(ctx context.Context, req ElicitRequest) (*service.ElicitResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
