package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"mcpweb/internal/backend"
	"mcpweb/pkg/logging"
)

// dialFunc opens a ready-to-use connection to a proxied backend.
type dialFunc func(ctx context.Context) (backend.Client, error)

// proxiedRoute forwards operations to an out-of-process backend. Every call
// runs on a fresh connection that is closed before the call returns, so
// concurrent calls never share transport state. The validation verdict is
// written once before the registry freezes and checked before any network
// attempt.
type proxiedRoute struct {
	name  string
	dial  dialFunc
	valid bool
}

func newProxiedRoute(name string, cfg backend.ClientConfig) *proxiedRoute {
	return &proxiedRoute{
		name: name,
		dial: func(ctx context.Context) (backend.Client, error) {
			return backend.Connect(ctx, cfg)
		},
	}
}

func (r *proxiedRoute) info() BackendInfo {
	valid := r.valid
	return BackendInfo{
		Name:      r.name,
		Kind:      KindProxied,
		Validated: &valid,
	}
}

// guard refuses the operation when the backend did not pass validation.
func (r *proxiedRoute) guard() error {
	if !r.valid {
		return &ValidationFailedError{Name: r.name}
	}
	return nil
}

// forward opens a fresh connection, calls one backend tool and closes the
// connection before returning.
func (r *proxiedRoute) forward(ctx context.Context, tool string, args map[string]interface{}) (any, error) {
	cli, err := r.dial(ctx)
	if err != nil {
		return nil, backendUnavailable(r.name, err)
	}
	defer func() {
		if cerr := cli.Close(); cerr != nil {
			logging.Debug("dispatcher", "Error closing connection to %s: %v", r.name, cerr)
		}
	}()

	res, err := cli.CallTool(ctx, tool, args)
	if err != nil {
		return nil, backendUnavailable(r.name, err)
	}
	return decodeToolResult(res)
}

func (r *proxiedRoute) discover(ctx context.Context) (*Discovery, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}

	// Discovery of a validated backend never fails: an unreachable or
	// malformed answer degrades to a stub so callers can still see the
	// service exists.
	payload, err := r.forward(ctx, ToolListResources, map[string]interface{}{})
	if err == nil {
		d, derr := decodeDiscovery(r.name, payload)
		if derr == nil {
			return d, nil
		}
		err = derr
	}

	logging.Warn("dispatcher", "Discovery of proxied service '%s' failed, serving stub: %v", r.name, err)
	return &Discovery{
		Service:      r.name,
		Instructions: fmt.Sprintf("Service '%s' (proxied)", r.name),
		Resources:    []ResourceInfo{},
	}, nil
}

func (r *proxiedRoute) fetch(ctx context.Context, session *Bridge, address string) (any, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	// The address forwards untouched; the backend resolves its own forms.
	return r.forward(ctx, ToolGetResource, map[string]interface{}{
		"resource_uri": address,
	})
}

func (r *proxiedRoute) search(ctx context.Context, query string) ([]string, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}

	payload, err := r.forward(ctx, ToolSearchResources, map[string]interface{}{
		"query": query,
	})
	if err != nil {
		return nil, err
	}

	list, ok := payload.([]any)
	if !ok {
		return nil, backendUnavailable(r.name, fmt.Errorf("unexpected search result type %T", payload))
	}
	addresses := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			addresses = append(addresses, s)
		}
	}
	return addresses, nil
}

func (r *proxiedRoute) invoke(ctx context.Context, session *Bridge, action, address string) (any, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}
	return r.forward(ctx, ToolInvokeAction, map[string]interface{}{
		"action":      action,
		"resource_id": address,
	})
}

// decodeDiscovery converts a forwarded list_resources payload into a
// Discovery.
func decodeDiscovery(name string, payload any) (*Discovery, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var d Discovery
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	if d.Service == "" {
		d.Service = name
	}
	return &d, nil
}
