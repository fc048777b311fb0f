package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewClient tests the factory function for creating transport clients.
func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		config      ClientConfig
		wantErr     bool
		errContains string
	}{
		{
			name: "valid stdio client",
			config: ClientConfig{
				Type:    TransportStdio,
				Command: "echo",
				Args:    []string{"hello"},
			},
		},
		{
			name: "stdio client with env",
			config: ClientConfig{
				Type:    TransportStdio,
				Command: "echo",
				Env:     map[string]string{"TEST": "value"},
			},
		},
		{
			name:        "stdio client missing command",
			config:      ClientConfig{Type: TransportStdio},
			wantErr:     true,
			errContains: "command is required for stdio type",
		},
		{
			name: "valid streamable-http client",
			config: ClientConfig{
				Type: TransportStreamableHTTP,
				URL:  "http://example.com/mcp",
			},
		},
		{
			name: "streamable-http client with headers",
			config: ClientConfig{
				Type:    TransportStreamableHTTP,
				URL:     "http://example.com/mcp",
				Headers: map[string]string{"Authorization": "Bearer token"},
			},
		},
		{
			name:        "streamable-http client missing URL",
			config:      ClientConfig{Type: TransportStreamableHTTP},
			wantErr:     true,
			errContains: "url is required for streamable-http type",
		},
		{
			name: "valid sse client",
			config: ClientConfig{
				Type: TransportSSE,
				URL:  "http://example.com/sse",
			},
		},
		{
			name:        "sse client missing URL",
			config:      ClientConfig{Type: TransportSSE},
			wantErr:     true,
			errContains: "url is required for sse type",
		},
		{
			name:        "unsupported transport type",
			config:      ClientConfig{Type: Transport("invalid")},
			wantErr:     true,
			errContains: "unsupported transport type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
		})
	}
}

// TestClientTypeForTransport verifies the factory picks the right
// implementation per transport.
func TestClientTypeForTransport(t *testing.T) {
	stdio, err := NewClient(ClientConfig{Type: TransportStdio, Command: "echo"})
	require.NoError(t, err)
	assert.IsType(t, &StdioClient{}, stdio)

	sse, err := NewClient(ClientConfig{Type: TransportSSE, URL: "http://example.com/sse"})
	require.NoError(t, err)
	assert.IsType(t, &SSEClient{}, sse)

	http, err := NewClient(ClientConfig{Type: TransportStreamableHTTP, URL: "http://example.com/mcp"})
	require.NoError(t, err)
	assert.IsType(t, &StreamableHTTPClient{}, http)
}

// TestOperationsRequireConnection verifies that protocol operations fail
// cleanly before Initialize.
func TestOperationsRequireConnection(t *testing.T) {
	ctx := context.Background()
	c := NewStdioClient("echo", nil, nil)

	_, err := c.ListTools(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client not connected")

	_, err = c.CallTool(ctx, "get_resource", map[string]interface{}{"resource_uri": "mcpweb://email/inbox"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client not connected")

	// Close before connect is a no-op.
	assert.NoError(t, c.Close())
}

// TestConnectRejectsBadConfig verifies Connect surfaces factory errors
// without attempting a connection.
func TestConnectRejectsBadConfig(t *testing.T) {
	_, err := Connect(context.Background(), ClientConfig{Type: TransportStdio})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command is required")
}
