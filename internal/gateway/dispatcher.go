package gateway

import (
	"context"

	"mcpweb/pkg/logging"
)

// Dispatcher routes operations to backends through the frozen registry.
// All methods are safe for concurrent use: the registry is read-only and
// every top-level call gets its own bridge.
type Dispatcher struct {
	registry *Registry
	elicitor Elicitor
}

// NewDispatcher creates a dispatcher over a frozen registry. The elicitor
// forwards elicitation requests to the original caller; it may be nil when
// the serving transport cannot deliver them.
func NewDispatcher(registry *Registry, elicitor Elicitor) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		elicitor: elicitor,
	}
}

// Registry returns the dispatcher's routing table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// ListBackends returns the listing entries of every registered backend in
// listing order. It never fails.
func (d *Dispatcher) ListBackends(ctx context.Context) []BackendInfo {
	return d.registry.Infos()
}

// Discover returns a backend's instructions and resource table.
func (d *Dispatcher) Discover(ctx context.Context, name string) (*Discovery, error) {
	route, ok := d.registry.route(name)
	if !ok {
		return nil, d.unknown(name)
	}
	return route.discover(ctx)
}

// Fetch reads one resource by absolute address.
func (d *Dispatcher) Fetch(ctx context.Context, address string) (any, error) {
	return d.fetchWith(ctx, d.newBridge(), address)
}

// Search returns absolute addresses of resources matching the query within
// a scope ("email", "email/", or a full address).
func (d *Dispatcher) Search(ctx context.Context, scope, query string) ([]string, error) {
	name, err := d.registry.codec.ServiceFromScope(scope)
	if err != nil {
		return nil, err
	}
	route, ok := d.registry.route(name)
	if !ok {
		return nil, d.unknown(name)
	}

	results, err := route.search(ctx, query)
	if err != nil {
		return nil, err
	}

	// Mounted handlers may return service-relative paths; rewrite them to
	// absolute addresses. Already-absolute results pass through.
	addresses := make([]string, 0, len(results))
	for _, result := range results {
		addresses = append(addresses, d.registry.codec.Rewrite(name, result))
	}
	return addresses, nil
}

// Invoke performs a named action against a resource address.
func (d *Dispatcher) Invoke(ctx context.Context, action, address string) (any, error) {
	return d.invokeWith(ctx, d.newBridge(), action, address)
}

// newBridge creates the calling context for one top-level call.
func (d *Dispatcher) newBridge() *Bridge {
	return &Bridge{
		dispatcher: d,
		elicitor:   d.elicitor,
		state:      newCallState(),
	}
}

func (d *Dispatcher) fetchWith(ctx context.Context, session *Bridge, address string) (any, error) {
	name, _, err := d.registry.codec.Parse(address)
	if err != nil {
		return nil, err
	}

	primary, ok := d.registry.route(name)
	if !ok {
		return nil, d.unknown(name)
	}

	payload, err := primary.fetch(ctx, session.boundTo(name), address)
	if err == nil {
		return payload, nil
	}

	// A failed mounted read falls back to a proxied registration under the
	// same name when one exists.
	if primary.info().Kind == KindMounted {
		if fallback, ok := d.registry.proxiedFallback(name); ok {
			logging.Debug("dispatcher", "Mounted fetch of %s failed (%v), forwarding to proxied registration", address, err)
			return fallback.fetch(ctx, session.boundTo(name), address)
		}
	}
	return nil, err
}

func (d *Dispatcher) invokeWith(ctx context.Context, session *Bridge, action, address string) (any, error) {
	name, _, err := d.registry.codec.Parse(address)
	if err != nil {
		return nil, err
	}
	route, ok := d.registry.route(name)
	if !ok {
		return nil, d.unknown(name)
	}
	return route.invoke(ctx, session.boundTo(name), action, address)
}

func (d *Dispatcher) unknown(name string) error {
	return &UnknownServiceError{Name: name, Available: d.registry.Names()}
}
