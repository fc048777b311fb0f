package service

import (
	"context"
	"sort"
)

// Session is the calling context handed to handlers. Nested operations
// re-enter the gateway dispatcher, so addresses of other services resolve
// transparently. Relative addresses resolve against the handler's own
// service.
type Session interface {
	// Fetch reads a resource by relative path or absolute address.
	Fetch(ctx context.Context, address string) (any, error)
	// Search finds resource addresses matching the query within a scope.
	Search(ctx context.Context, scope, query string) ([]string, error)
	// Invoke performs a named action against a resource address.
	Invoke(ctx context.Context, action, address string) (any, error)
	// Elicit asks the original caller for input and suspends until the
	// answer arrives. The schema describes the requested fields as a JSON
	// schema object.
	Elicit(ctx context.Context, message string, schema map[string]any) (*ElicitResult, error)
	// Value reads request-scoped state stored by SetValue.
	Value(key string) (any, bool)
	// SetValue stores request-scoped state visible to nested handlers of
	// the same top-level call.
	SetValue(key string, value any)
}

// ElicitResult is the caller's answer to an elicitation request. The answer
// passes through the gateway untouched.
type ElicitResult struct {
	// Action is one of ElicitAccept, ElicitDecline or ElicitCancel.
	Action string `json:"action"`
	// Content holds the submitted fields when Action is ElicitAccept.
	Content map[string]any `json:"content,omitempty"`
}

// Elicitation answer actions.
const (
	ElicitAccept  = "accept"
	ElicitDecline = "decline"
	ElicitCancel  = "cancel"
)

// StringField returns a string field of the answer content, or fallback when
// the field is absent or not a string.
func (r *ElicitResult) StringField(key, fallback string) string {
	if v, ok := r.Content[key].(string); ok {
		return v
	}
	return fallback
}

// BoolField returns a boolean field of the answer content, false when absent.
func (r *ElicitResult) BoolField(key string) bool {
	v, _ := r.Content[key].(bool)
	return v
}

// Request carries the inputs of one resource read.
type Request struct {
	// Address is the absolute address being fetched.
	Address string
	// Params holds values extracted from {param} placeholders in the
	// resource path.
	Params map[string]string
	// Session is the calling context.
	Session Session
}

// Param returns the value of a path template parameter, or "" when absent.
func (r *Request) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// ActionCall carries the inputs of one action invocation. Actions gather
// any further input they need from the caller through Session.Elicit.
type ActionCall struct {
	// Action is the invoked action name.
	Action string
	// Address is the resource address the action applies to.
	Address string
	// Session is the calling context.
	Session Session
}

// ResourceHandler produces the payload of one resource. The returned value
// is serialized to JSON by the gateway.
type ResourceHandler func(ctx context.Context, req *Request) (any, error)

// SearchHandler returns the addresses of resources matching a query.
// Results may be service-relative paths; the gateway rewrites them to
// absolute addresses.
type SearchHandler func(ctx context.Context, query string) ([]string, error)

// ActionHandler performs one named action.
type ActionHandler func(ctx context.Context, call *ActionCall) (any, error)

// Resource declares one addressable resource of a service.
type Resource struct {
	// Path is the service-relative path, optionally with {param}
	// placeholders ("/thread/{thread_id}").
	Path string
	// Name is the human-readable resource name.
	Name string
	// Description explains what the resource returns.
	Description string
	// Handler produces the resource payload.
	Handler ResourceHandler
}

// Service is an in-process backend definition: usage instructions, a table
// of addressable resources, and optional search and action handlers. Define
// a service at startup and mount it into the gateway; definitions are not
// safe for mutation afterwards.
type Service struct {
	name         string
	instructions string
	resources    []Resource
	search       SearchHandler
	actions      map[string]ActionHandler
}

// New creates a service definition. The name becomes the service segment of
// every address; instructions tell callers how to use the service.
func New(name, instructions string) *Service {
	return &Service{
		name:         name,
		instructions: instructions,
		actions:      make(map[string]ActionHandler),
	}
}

// Resource declares a resource under the given service-relative path.
func (s *Service) Resource(path, name, description string, handler ResourceHandler) {
	s.resources = append(s.resources, Resource{
		Path:        path,
		Name:        name,
		Description: description,
		Handler:     handler,
	})
}

// Search installs the service's search handler.
func (s *Service) Search(handler SearchHandler) {
	s.search = handler
}

// Action declares a named action. Registering the same name again replaces
// the handler.
func (s *Service) Action(name string, handler ActionHandler) {
	s.actions[name] = handler
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// Instructions returns the service usage instructions.
func (s *Service) Instructions() string { return s.instructions }

// Resources returns the declared resources in declaration order.
func (s *Service) Resources() []Resource { return s.resources }

// SearchHandler returns the installed search handler, or nil.
func (s *Service) SearchHandler() SearchHandler { return s.search }

// ActionHandler returns the handler for an action name.
func (s *Service) ActionHandler(name string) (ActionHandler, bool) {
	h, ok := s.actions[name]
	return h, ok
}

// Actions returns the declared action names, sorted.
func (s *Service) Actions() []string {
	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
