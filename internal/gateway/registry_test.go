package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpweb/internal/service"
)

func TestBuilderRejectsDuplicateMount(t *testing.T) {
	b := NewBuilder(NewCodec(""))
	require.NoError(t, b.Mount(newLibraryService()))

	err := b.Mount(newLibraryService())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), "library")

	// The first registration survives the collision.
	reg := b.Build()
	assert.Equal(t, []string{"library"}, reg.Names())
}

func TestBuilderRejectsDuplicateProxy(t *testing.T) {
	b := NewBuilder(NewCodec(""))
	addFakeProxy(t, b, "wiki", &fakeDialer{}, false)

	err := b.addProxyRoute("wiki", &proxiedRoute{name: "wiki"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestBuilderRejectsEmptyName(t *testing.T) {
	b := NewBuilder(NewCodec(""))

	err := b.Mount(service.New("", "unnamed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")

	err = b.addProxyRoute("", &proxiedRoute{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestBuilderAllowsDualRegistration(t *testing.T) {
	b := NewBuilder(NewCodec(""))
	require.NoError(t, b.Mount(newLibraryService()))
	addFakeProxy(t, b, "library", &fakeDialer{}, true)

	reg := b.Build()

	// A dual-registered name lists once and the mounted backend answers it.
	assert.Equal(t, []string{"library"}, reg.Names())

	route, ok := reg.route("library")
	require.True(t, ok)
	assert.Equal(t, KindMounted, route.info().Kind)

	fallback, ok := reg.proxiedFallback("library")
	require.True(t, ok)
	assert.Equal(t, KindProxied, fallback.info().Kind)
}

func TestRegistryListingOrder(t *testing.T) {
	b := NewBuilder(NewCodec(""))

	beta := service.New("beta", "Beta service")
	alpha := service.New("alpha", "Alpha service")
	require.NoError(t, b.Mount(beta))
	require.NoError(t, b.Mount(alpha))

	addFakeProxy(t, b, "zeta", &fakeDialer{}, true)
	addFakeProxy(t, b, "beta", &fakeDialer{}, true)
	addFakeProxy(t, b, "core", &fakeDialer{}, true)

	reg := b.Build()

	// Mounted services first in mount order, then proxied ones in
	// registration order, with the shadowed twin folded into its mounted name.
	assert.Equal(t, []string{"beta", "alpha", "zeta", "core"}, reg.Names())
}

func TestRegistryInfos(t *testing.T) {
	b := NewBuilder(NewCodec(""))
	require.NoError(t, b.Mount(newLibraryService()))
	addFakeProxy(t, b, "wiki", &fakeDialer{}, true)
	addFakeProxy(t, b, "legacy", &fakeDialer{}, false)

	infos := b.Build().Infos()
	require.Len(t, infos, 3)

	assert.Equal(t, "library", infos[0].Name)
	assert.Equal(t, KindMounted, infos[0].Kind)
	assert.Equal(t, 2, infos[0].Resources)
	assert.Nil(t, infos[0].Validated)

	assert.Equal(t, "wiki", infos[1].Name)
	assert.Equal(t, KindProxied, infos[1].Kind)
	require.NotNil(t, infos[1].Validated)
	assert.True(t, *infos[1].Validated)

	assert.Equal(t, "legacy", infos[2].Name)
	require.NotNil(t, infos[2].Validated)
	assert.False(t, *infos[2].Validated)
}

func TestRegistryRouteUnknown(t *testing.T) {
	reg := NewBuilder(NewCodec("")).Build()

	_, ok := reg.route("ghost")
	assert.False(t, ok)
	_, ok = reg.proxiedFallback("ghost")
	assert.False(t, ok)
}
