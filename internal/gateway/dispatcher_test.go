package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpweb/internal/service"
)

// dispatcherFixture wires a dispatcher over one mounted service ("library"),
// one healthy proxied service ("wiki") and one that failed validation
// ("legacy").
type dispatcherFixture struct {
	dispatcher *Dispatcher
	wiki       *fakeDialer
	wikiClient *fakeBackendClient
	legacy     *fakeDialer
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	wikiClient := &fakeBackendClient{
		results: map[string]*mcp.CallToolResult{
			ToolListResources: jsonToolResult(t, map[string]any{
				"service":      "wiki",
				"instructions": "Browse the wiki",
				"resources": []any{
					"wiki://page/1",
					map[string]any{"address": "wiki://page/2", "name": "Page two", "description": "Second page"},
				},
			}),
			ToolGetResource:     jsonToolResult(t, map[string]any{"title": "Page", "body": "hello"}),
			ToolSearchResources: jsonToolResult(t, []string{"wiki://page/1", "wiki://page/2"}),
			ToolInvokeAction:    jsonToolResult(t, map[string]any{"ok": true}),
		},
	}
	wiki := &fakeDialer{client: wikiClient}
	legacy := &fakeDialer{dialErr: errors.New("must not be dialed")}

	b := NewBuilder(NewCodec(""))
	require.NoError(t, b.Mount(newLibraryService()))
	addFakeProxy(t, b, "wiki", wiki, true)
	addFakeProxy(t, b, "legacy", legacy, false)

	return &dispatcherFixture{
		dispatcher: NewDispatcher(b.Build(), nil),
		wiki:       wiki,
		wikiClient: wikiClient,
		legacy:     legacy,
	}
}

func TestDispatcherListBackends(t *testing.T) {
	f := newDispatcherFixture(t)

	backends := f.dispatcher.ListBackends(context.Background())
	require.Len(t, backends, 3)
	assert.Equal(t, "library", backends[0].Name)
	assert.Equal(t, "wiki", backends[1].Name)
	assert.Equal(t, "legacy", backends[2].Name)
	assert.True(t, *backends[1].Validated)
	assert.False(t, *backends[2].Validated)
}

func TestDispatcherDiscoverMounted(t *testing.T) {
	f := newDispatcherFixture(t)

	d, err := f.dispatcher.Discover(context.Background(), "library")
	require.NoError(t, err)
	assert.Equal(t, "library", d.Service)
	assert.Equal(t, "Borrow and browse books", d.Instructions)
	require.Len(t, d.Resources, 2)
	assert.Equal(t, "mcpweb://library/catalog", d.Resources[0].Address)
	assert.Equal(t, "Catalog", d.Resources[0].Name)
	assert.Equal(t, "mcpweb://library/book/{book_id}", d.Resources[1].Address)
}

func TestDispatcherDiscoverProxied(t *testing.T) {
	f := newDispatcherFixture(t)

	d, err := f.dispatcher.Discover(context.Background(), "wiki")
	require.NoError(t, err)
	assert.Equal(t, "wiki", d.Service)
	assert.Equal(t, "Browse the wiki", d.Instructions)
	require.Len(t, d.Resources, 2)
	// Backends may list resources as bare addresses or full objects.
	assert.Equal(t, "wiki://page/1", d.Resources[0].Address)
	assert.Equal(t, "wiki://page/2", d.Resources[1].Address)
	assert.Equal(t, "Page two", d.Resources[1].Name)

	require.Len(t, f.wikiClient.calls, 1)
	assert.Equal(t, ToolListResources, f.wikiClient.calls[0].tool)
	assert.Empty(t, f.wikiClient.calls[0].args)

	// One connection per forwarded call, released afterwards.
	assert.Equal(t, 1, f.wiki.dialCount())
	assert.Equal(t, 1, f.wikiClient.closed)
}

func TestDispatcherDiscoverUnknown(t *testing.T) {
	f := newDispatcherFixture(t)

	_, err := f.dispatcher.Discover(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownService)
	assert.Contains(t, err.Error(), "Available services: library, wiki, legacy")
}

func TestDispatcherDiscoverServesStubOnFailure(t *testing.T) {
	f := newDispatcherFixture(t)
	f.wiki.dialErr = errors.New("connection reset")

	// A validated backend that fails at discovery time degrades to a stub
	// instead of erroring, so the service stays visible.
	d, err := f.dispatcher.Discover(context.Background(), "wiki")
	require.NoError(t, err)
	assert.Equal(t, "wiki", d.Service)
	assert.Equal(t, "Service 'wiki' (proxied)", d.Instructions)
	assert.Empty(t, d.Resources)
}

func TestDispatcherFetchMounted(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	payload, err := f.dispatcher.Fetch(ctx, "mcpweb://library/catalog")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"books": []string{"/book/1", "/book/2"}}, payload)

	// Template paths match and hand the extracted parameters to the handler.
	payload, err = f.dispatcher.Fetch(ctx, "mcpweb://library/book/42")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "42"}, payload)

	_, err = f.dispatcher.Fetch(ctx, "mcpweb://library/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestDispatcherFetchProxied(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	payload, err := f.dispatcher.Fetch(ctx, "mcpweb://wiki/page/1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Page", "body": "hello"}, payload)

	// Foreign-scheme addresses route by their scheme segment and forward
	// verbatim.
	_, err = f.dispatcher.Fetch(ctx, "wiki://page/1")
	require.NoError(t, err)

	require.Len(t, f.wikiClient.calls, 2)
	assert.Equal(t, map[string]interface{}{"resource_uri": "mcpweb://wiki/page/1"}, f.wikiClient.calls[0].args)
	assert.Equal(t, map[string]interface{}{"resource_uri": "wiki://page/1"}, f.wikiClient.calls[1].args)
}

func TestDispatcherFetchBadAddresses(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.Fetch(ctx, "junk")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = f.dispatcher.Fetch(ctx, "mcpweb://ghost/thing")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestDispatcherFetchFallsBackToProxiedTwin(t *testing.T) {
	twinClient := &fakeBackendClient{
		results: map[string]*mcp.CallToolResult{
			ToolGetResource: jsonToolResult(t, map[string]any{"source": "proxied twin"}),
		},
	}
	twin := &fakeDialer{client: twinClient}

	svc := service.New("library", "Mounted library")
	svc.Resource("/catalog", "Catalog", "", func(ctx context.Context, req *service.Request) (any, error) {
		return map[string]any{"books": []string{}}, nil
	})
	svc.Resource("/flaky", "Flaky", "", func(ctx context.Context, req *service.Request) (any, error) {
		return nil, errors.New("disk offline")
	})

	b := NewBuilder(NewCodec(""))
	require.NoError(t, b.Mount(svc))
	addFakeProxy(t, b, "library", twin, true)
	d := NewDispatcher(b.Build(), nil)
	ctx := context.Background()

	// A path the mounted table does not know forwards to the proxied twin,
	// carrying the original address.
	payload, err := d.Fetch(ctx, "mcpweb://library/archive/9")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "proxied twin"}, payload)

	// A mounted handler failure falls back the same way.
	payload, err = d.Fetch(ctx, "mcpweb://library/flaky")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "proxied twin"}, payload)

	require.Len(t, twinClient.calls, 2)
	assert.Equal(t, map[string]interface{}{"resource_uri": "mcpweb://library/archive/9"}, twinClient.calls[0].args)

	// Resolvable mounted reads never touch the twin.
	dials := twin.dialCount()
	_, err = d.Fetch(ctx, "mcpweb://library/catalog")
	require.NoError(t, err)
	assert.Equal(t, dials, twin.dialCount())
}

func TestDispatcherSearchMounted(t *testing.T) {
	f := newDispatcherFixture(t)

	// Every scope form addressing the same service behaves identically.
	scopes := []string{"library", "library/", "mcpweb://library", "mcpweb://library/catalog"}
	for _, scope := range scopes {
		t.Run(scope, func(t *testing.T) {
			results, err := f.dispatcher.Search(context.Background(), scope, "book")
			require.NoError(t, err)
			assert.Equal(t, []string{"mcpweb://library/book/1"}, results)
		})
	}
}

func TestDispatcherSearchProxied(t *testing.T) {
	f := newDispatcherFixture(t)

	results, err := f.dispatcher.Search(context.Background(), "wiki", "pages")
	require.NoError(t, err)
	assert.Equal(t, []string{"wiki://page/1", "wiki://page/2"}, results)

	// Only the query forwards; scoping already happened at the gateway.
	require.Len(t, f.wikiClient.calls, 1)
	assert.Equal(t, ToolSearchResources, f.wikiClient.calls[0].tool)
	assert.Equal(t, map[string]interface{}{"query": "pages"}, f.wikiClient.calls[0].args)
}

func TestDispatcherSearchBadScopes(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.Search(ctx, "", "anything")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = f.dispatcher.Search(ctx, "ghost", "anything")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestDispatcherInvokeMounted(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	payload, err := f.dispatcher.Invoke(ctx, "checkout", "mcpweb://library/book/1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "checked_out", "address": "mcpweb://library/book/1"}, payload)

	_, err = f.dispatcher.Invoke(ctx, "burn", "mcpweb://library/book/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAction)
	assert.Contains(t, err.Error(), "Supported actions: checkout")
}

func TestDispatcherInvokeProxied(t *testing.T) {
	f := newDispatcherFixture(t)

	payload, err := f.dispatcher.Invoke(context.Background(), "tag", "mcpweb://wiki/page/1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, payload)

	require.Len(t, f.wikiClient.calls, 1)
	assert.Equal(t, ToolInvokeAction, f.wikiClient.calls[0].tool)
	assert.Equal(t, map[string]interface{}{
		"action":      "tag",
		"resource_id": "mcpweb://wiki/page/1",
	}, f.wikiClient.calls[0].args)
}

func TestDispatcherRefusesUnvalidatedBackend(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.Discover(ctx, "legacy")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.dispatcher.Fetch(ctx, "mcpweb://legacy/item")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.dispatcher.Search(ctx, "legacy", "anything")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.dispatcher.Invoke(ctx, "poke", "mcpweb://legacy/item")
	assert.ErrorIs(t, err, ErrValidationFailed)

	// The gate sits in front of the network: nothing was dialed.
	assert.Equal(t, 0, f.legacy.dialCount())
}

func TestDispatcherReportsBackendFailure(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.wiki.dialErr = errors.New("connection refused")
	_, err := f.dispatcher.Fetch(ctx, "mcpweb://wiki/page/1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	// A failure mid-call still releases the connection.
	f.wiki.dialErr = nil
	f.wikiClient.callErr = errors.New("stream closed")
	_, err = f.dispatcher.Fetch(ctx, "mcpweb://wiki/page/1")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, 1, f.wikiClient.closed)
}

func TestDispatcherPropagatesBackendToolError(t *testing.T) {
	f := newDispatcherFixture(t)
	f.wikiClient.results[ToolGetResource] = mcp.NewToolResultError("Resource not found: wiki://page/9")

	_, err := f.dispatcher.Fetch(context.Background(), "mcpweb://wiki/page/9")
	require.Error(t, err)
	assert.Equal(t, "Resource not found: wiki://page/9", err.Error())
}
