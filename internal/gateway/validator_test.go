package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorMarksConformingBackendValid(t *testing.T) {
	client := &fakeBackendClient{tools: requiredToolSet()}
	dialer := &fakeDialer{client: client}

	b := NewBuilder(NewCodec(""))
	route := &proxiedRoute{name: "wiki", dial: dialer.dial}
	require.NoError(t, b.addProxyRoute("wiki", route))

	NewValidator(time.Second).Run(context.Background(), b)

	assert.True(t, route.valid)
	assert.Equal(t, 1, dialer.dialCount())
	// The probe connection is released before the verdict lands.
	assert.Equal(t, 1, client.closed)
}

func TestValidatorRejectsUnreachableBackend(t *testing.T) {
	dialer := &fakeDialer{dialErr: errors.New("connection refused")}

	b := NewBuilder(NewCodec(""))
	route := &proxiedRoute{name: "wiki", dial: dialer.dial}
	require.NoError(t, b.addProxyRoute("wiki", route))

	NewValidator(time.Second).Run(context.Background(), b)

	assert.False(t, route.valid)
}

func TestValidatorRejectsFailedToolListing(t *testing.T) {
	client := &fakeBackendClient{listErr: errors.New("handshake timeout")}
	dialer := &fakeDialer{client: client}

	b := NewBuilder(NewCodec(""))
	route := &proxiedRoute{name: "wiki", dial: dialer.dial}
	require.NoError(t, b.addProxyRoute("wiki", route))

	NewValidator(time.Second).Run(context.Background(), b)

	assert.False(t, route.valid)
	assert.Equal(t, 1, client.closed)
}

func TestValidatorRejectsMissingTools(t *testing.T) {
	tests := []struct {
		name  string
		tools []mcp.Tool
	}{
		{
			name:  "no tools at all",
			tools: nil,
		},
		{
			name: "missing invoke_action",
			tools: []mcp.Tool{
				{Name: ToolListResources},
				{Name: ToolGetResource},
				{Name: ToolSearchResources},
			},
		},
		{
			name: "unrelated tools only",
			tools: []mcp.Tool{
				{Name: "echo"},
				{Name: "add"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := &fakeDialer{client: &fakeBackendClient{tools: tt.tools}}

			b := NewBuilder(NewCodec(""))
			route := &proxiedRoute{name: "partial", dial: dialer.dial}
			require.NoError(t, b.addProxyRoute("partial", route))

			NewValidator(time.Second).Run(context.Background(), b)

			assert.False(t, route.valid)
		})
	}
}

func TestValidatorSkipAll(t *testing.T) {
	dialer := &fakeDialer{dialErr: errors.New("must not be dialed")}

	b := NewBuilder(NewCodec(""))
	route := &proxiedRoute{name: "wiki", dial: dialer.dial}
	require.NoError(t, b.addProxyRoute("wiki", route))

	NewValidator(time.Second).SkipAll(b)

	assert.True(t, route.valid)
	assert.Equal(t, 0, dialer.dialCount())
}

func TestValidatorProbesEveryBackend(t *testing.T) {
	good := &proxiedRoute{name: "good", dial: (&fakeDialer{client: &fakeBackendClient{tools: requiredToolSet()}}).dial}
	unreachable := &proxiedRoute{name: "unreachable", dial: (&fakeDialer{dialErr: errors.New("refused")}).dial}
	partial := &proxiedRoute{name: "partial", dial: (&fakeDialer{client: &fakeBackendClient{tools: []mcp.Tool{{Name: ToolGetResource}}}}).dial}

	b := NewBuilder(NewCodec(""))
	require.NoError(t, b.addProxyRoute("good", good))
	require.NoError(t, b.addProxyRoute("unreachable", unreachable))
	require.NoError(t, b.addProxyRoute("partial", partial))

	NewValidator(time.Second).Run(context.Background(), b)

	assert.True(t, good.valid)
	assert.False(t, unreachable.valid)
	assert.False(t, partial.valid)

	// Verdicts surface in the listing once the registry freezes.
	infos := b.Build().Infos()
	require.Len(t, infos, 3)
	assert.True(t, *infos[0].Validated)
	assert.False(t, *infos[1].Validated)
	assert.False(t, *infos[2].Validated)
}
