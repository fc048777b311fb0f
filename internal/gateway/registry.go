package gateway

import (
	"fmt"

	"mcpweb/internal/backend"
	"mcpweb/internal/service"
	"mcpweb/pkg/logging"
)

// Builder accumulates backend registrations during startup. Build freezes
// the registrations into an immutable Registry; the builder must not be
// used afterwards.
//
// A name may be registered at most once per kind. One mounted and one
// proxied registration may share a name: the mounted backend shadows the
// proxied one everywhere except the fetch fallback.
type Builder struct {
	codec        Codec
	mounted      map[string]*mountedRoute
	mountedOrder []string
	proxied      map[string]*proxiedRoute
	proxiedOrder []string
}

// NewBuilder creates an empty registry builder using the given address
// codec.
func NewBuilder(codec Codec) *Builder {
	return &Builder{
		codec:   codec,
		mounted: make(map[string]*mountedRoute),
		proxied: make(map[string]*proxiedRoute),
	}
}

// Mount registers an in-process service. The service's resource paths are
// rewritten to absolute addresses under the codec's scheme. Mounting a name
// twice fails with ErrDuplicateName and keeps the first registration.
func (b *Builder) Mount(svc *service.Service) error {
	name := svc.Name()
	if name == "" {
		return fmt.Errorf("service name is required")
	}
	if _, exists := b.mounted[name]; exists {
		return duplicateName(name)
	}

	route, err := newMountedRoute(svc, b.codec)
	if err != nil {
		return err
	}
	b.mounted[name] = route
	b.mountedOrder = append(b.mountedOrder, name)

	logging.Info("registry", "Mounted service '%s' with %d resources", name, len(route.entries))
	return nil
}

// AddProxy registers an out-of-process backend reached per the client
// config. Registering a proxied name twice fails with ErrDuplicateName and
// keeps the first registration.
func (b *Builder) AddProxy(name string, cfg backend.ClientConfig) error {
	return b.addProxyRoute(name, newProxiedRoute(name, cfg))
}

func (b *Builder) addProxyRoute(name string, route *proxiedRoute) error {
	if name == "" {
		return fmt.Errorf("service name is required")
	}
	if _, exists := b.proxied[name]; exists {
		return duplicateName(name)
	}
	b.proxied[name] = route
	b.proxiedOrder = append(b.proxiedOrder, name)

	logging.Info("registry", "Registered proxied service '%s'", name)
	return nil
}

// proxiedRoutes returns the proxied registrations in registration order,
// for the validator.
func (b *Builder) proxiedRoutes() []*proxiedRoute {
	routes := make([]*proxiedRoute, 0, len(b.proxiedOrder))
	for _, name := range b.proxiedOrder {
		routes = append(routes, b.proxied[name])
	}
	return routes
}

// Build freezes the registrations into a Registry. Validation verdicts must
// be recorded before Build; the registry is read-only afterwards and safe
// for unsynchronized concurrent reads.
func (b *Builder) Build() *Registry {
	names := make([]string, 0, len(b.mountedOrder)+len(b.proxiedOrder))
	names = append(names, b.mountedOrder...)
	for _, name := range b.proxiedOrder {
		if _, shadowed := b.mounted[name]; !shadowed {
			names = append(names, name)
		}
	}

	return &Registry{
		codec:   b.codec,
		mounted: b.mounted,
		proxied: b.proxied,
		names:   names,
	}
}

// Registry is the immutable routing table the dispatcher serves from.
// Mounted backends come first in listing order, then proxied ones, each in
// registration order.
type Registry struct {
	codec   Codec
	mounted map[string]*mountedRoute
	proxied map[string]*proxiedRoute
	names   []string
}

// Codec returns the registry's address codec.
func (r *Registry) Codec() Codec {
	return r.codec
}

// Names returns the service names in listing order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Infos returns the listing entries for all backends, one per name.
func (r *Registry) Infos() []BackendInfo {
	infos := make([]BackendInfo, 0, len(r.names))
	for _, name := range r.names {
		route, _ := r.route(name)
		infos = append(infos, route.info())
	}
	return infos
}

// route resolves a name to its backend route, mounted taking precedence
// over proxied on dual registration.
func (r *Registry) route(name string) (route, bool) {
	if m, ok := r.mounted[name]; ok {
		return m, true
	}
	if p, ok := r.proxied[name]; ok {
		return p, true
	}
	return nil, false
}

// proxiedFallback resolves the proxied registration of a name even when a
// mounted one shadows it. The dispatcher uses it for the fetch fallback.
func (r *Registry) proxiedFallback(name string) (route, bool) {
	p, ok := r.proxied[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// mountedRoutes returns the mounted registrations in mount order, for
// native resource registration on the server.
func (r *Registry) mountedRoutes() []*mountedRoute {
	routes := make([]*mountedRoute, 0, len(r.mounted))
	for _, name := range r.names {
		if m, ok := r.mounted[name]; ok {
			routes = append(routes, m)
		}
	}
	return routes
}
