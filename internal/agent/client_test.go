package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	logger := NewLogger(false, false, false)
	client := NewClient("http://localhost:8090/mcp", logger, TransportStreamableHTTP)

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8090/mcp", client.GetEndpoint())
	assert.Equal(t, TransportStreamableHTTP, client.transport)
	assert.NotNil(t, client.NotificationChan)
}

func TestSupportsNotifications(t *testing.T) {
	logger := NewDevNullLogger()

	sse := NewClient("http://localhost:8090/sse", logger, TransportSSE)
	assert.True(t, sse.SupportsNotifications())

	http := NewClient("http://localhost:8090/mcp", logger, TransportStreamableHTTP)
	assert.False(t, http.SupportsNotifications())
}

func TestCallToolRequiresConnection(t *testing.T) {
	client := NewClient("http://localhost:8090/mcp", NewDevNullLogger(), TransportStreamableHTTP)

	_, err := client.CallTool(context.Background(), "list_services", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(true, true, false)
	assert.NotNil(t, logger)
	assert.True(t, logger.verbose)
	assert.True(t, logger.useColor)
	assert.False(t, logger.jsonRPCMode)

	logger2 := NewLogger(false, false, true)
	assert.NotNil(t, logger2)
	assert.False(t, logger2.verbose)
	assert.False(t, logger2.useColor)
	assert.True(t, logger2.jsonRPCMode)
}

func TestColorize(t *testing.T) {
	logger := NewLogger(false, true, false)
	result := logger.colorize("test", colorRed)
	assert.Equal(t, colorRed+"test"+colorReset, result)

	logger2 := NewLogger(false, false, false)
	result2 := logger2.colorize("test", colorRed)
	assert.Equal(t, "test", result2)
}

func TestParseServiceListing(t *testing.T) {
	data := `{"services":[{"name":"email","kind":"mounted","resources":2},{"name":"wiki","kind":"proxied","validated":true}],"total":2}`

	listing, err := parseServiceListing(data)
	require.NoError(t, err)

	assert.Equal(t, 2, listing.Total)
	require.Len(t, listing.Services, 2)

	assert.Equal(t, "email", listing.Services[0].Name)
	assert.Equal(t, "mounted", listing.Services[0].Kind)
	assert.Equal(t, 2, listing.Services[0].Resources)
	assert.Nil(t, listing.Services[0].Validated)

	assert.Equal(t, "wiki", listing.Services[1].Name)
	assert.Equal(t, "proxied", listing.Services[1].Kind)
	require.NotNil(t, listing.Services[1].Validated)
	assert.True(t, *listing.Services[1].Validated)
}

func TestParseServiceListingRejectsGarbage(t *testing.T) {
	_, err := parseServiceListing("Service 'ghost' not found")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected list_services response")
}

func TestParseServiceDiscovery(t *testing.T) {
	data := `{
		"service": "wiki",
		"instructions": "Browse the wiki",
		"resources": [
			"wiki://page/1",
			{"address": "mcpweb://wiki/page/{page_id}", "name": "Page", "description": "One wiki page"}
		]
	}`

	discovery, err := parseServiceDiscovery(data)
	require.NoError(t, err)

	assert.Equal(t, "wiki", discovery.Service)
	assert.Equal(t, "Browse the wiki", discovery.Instructions)
	require.Len(t, discovery.Resources, 2)

	assert.Equal(t, "wiki://page/1", discovery.Resources[0].Address)
	assert.Empty(t, discovery.Resources[0].Name)

	assert.Equal(t, "mcpweb://wiki/page/{page_id}", discovery.Resources[1].Address)
	assert.Equal(t, "Page", discovery.Resources[1].Name)
	assert.Equal(t, "One wiki page", discovery.Resources[1].Description)
}

func TestParseAddresses(t *testing.T) {
	addresses, err := parseAddresses(`["mcpweb://email/thread/thread_001","mcpweb://email/thread/thread_002"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"mcpweb://email/thread/thread_001",
		"mcpweb://email/thread/thread_002",
	}, addresses)

	empty, err := parseAddresses(`[]`)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = parseAddresses(`{"oops":true}`)
	require.Error(t, err)
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"unread\": 2\n}", PrettyJSON(`{"unread":2}`))
	assert.Equal(t, "plain text stays as is", PrettyJSON("plain text stays as is"))
}
