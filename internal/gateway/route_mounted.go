package gateway

import (
	"context"
	"fmt"
	"strings"

	"mcpweb/internal/service"

	"github.com/yosida95/uritemplate/v3"
)

// resourceEntry is one mounted resource with its rewritten absolute address.
// Entries with {param} placeholders carry a compiled template for matching.
type resourceEntry struct {
	res      service.Resource
	address  string
	template *uritemplate.Template
}

// mountedRoute serves an in-process service definition. All operations run
// locally; fetch and invoke hand the calling bridge through to handlers.
type mountedRoute struct {
	svc     *service.Service
	entries []resourceEntry
}

// newMountedRoute rewrites the service's resource paths into absolute
// addresses and compiles templates for parameterized paths.
func newMountedRoute(svc *service.Service, codec Codec) (*mountedRoute, error) {
	r := &mountedRoute{svc: svc}
	for _, res := range svc.Resources() {
		entry := resourceEntry{
			res:     res,
			address: codec.Rewrite(svc.Name(), res.Path),
		}
		if strings.Contains(entry.address, "{") {
			tmpl, err := uritemplate.New(entry.address)
			if err != nil {
				return nil, fmt.Errorf("invalid resource path %q for service %s: %w", res.Path, svc.Name(), err)
			}
			entry.template = tmpl
		}
		r.entries = append(r.entries, entry)
	}
	return r, nil
}

func (r *mountedRoute) info() BackendInfo {
	return BackendInfo{
		Name:      r.svc.Name(),
		Kind:      KindMounted,
		Resources: len(r.entries),
	}
}

func (r *mountedRoute) discover(ctx context.Context) (*Discovery, error) {
	resources := make([]ResourceInfo, 0, len(r.entries))
	for _, entry := range r.entries {
		resources = append(resources, ResourceInfo{
			Address:     entry.address,
			Name:        entry.res.Name,
			Description: entry.res.Description,
		})
	}
	return &Discovery{
		Service:      r.svc.Name(),
		Instructions: r.svc.Instructions(),
		Resources:    resources,
	}, nil
}

func (r *mountedRoute) fetch(ctx context.Context, session *Bridge, address string) (any, error) {
	entry, params, ok := r.match(address)
	if !ok {
		return nil, resourceUnavailable(address)
	}

	payload, err := entry.res.Handler(ctx, &service.Request{
		Address: address,
		Params:  params,
		Session: session,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceUnavailable, address, err)
	}
	return payload, nil
}

// match resolves an address against the resource table: exact addresses
// first, then template matches with extracted parameters.
func (r *mountedRoute) match(address string) (resourceEntry, map[string]string, bool) {
	for _, entry := range r.entries {
		if entry.template == nil {
			if entry.address == address {
				return entry, nil, true
			}
			continue
		}
		if values := entry.template.Match(address); values != nil {
			params := make(map[string]string, len(entry.template.Varnames()))
			for _, name := range entry.template.Varnames() {
				params[name] = values.Get(name).String()
			}
			return entry, params, true
		}
	}
	return resourceEntry{}, nil, false
}

func (r *mountedRoute) search(ctx context.Context, query string) ([]string, error) {
	handler := r.svc.SearchHandler()
	if handler == nil {
		return []string{}, nil
	}
	return handler(ctx, query)
}

func (r *mountedRoute) invoke(ctx context.Context, session *Bridge, action, address string) (any, error) {
	handler, ok := r.svc.ActionHandler(action)
	if !ok {
		return nil, &UnsupportedActionError{Action: action, Supported: r.svc.Actions()}
	}
	return handler(ctx, &service.ActionCall{
		Action:  action,
		Address: address,
		Session: session,
	})
}
