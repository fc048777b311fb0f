package gateway

import (
	"context"
	"strings"
	"sync"

	"mcpweb/internal/service"
)

// Elicitor forwards an elicitation request to the original caller and
// returns the answer.
type Elicitor interface {
	Elicit(ctx context.Context, req ElicitRequest) (*service.ElicitResult, error)
}

// ElicitRequest carries the prompt a handler wants answered mid-call.
type ElicitRequest struct {
	// Message is the human-readable prompt shown to the caller.
	Message string
	// Schema is a JSON schema describing the expected answer shape.
	Schema map[string]any
}

// Bridge is the calling context handed to mounted handlers. It holds a
// back-reference to the dispatcher so nested operations re-enter the same
// routing path as top-level calls, and it carries the per-call elicitation
// channel and key/value state across service boundaries.
//
// One bridge tree exists per top-level call. Rebinding to another service
// copies the bridge, so a suspended elicitation in one call never blocks
// another.
type Bridge struct {
	dispatcher *Dispatcher
	// service is the name relative addresses resolve against.
	service  string
	elicitor Elicitor
	state    *callState
}

var _ service.Session = (*Bridge)(nil)

// Fetch reads a resource, resolving relative addresses against the bound
// service.
func (b *Bridge) Fetch(ctx context.Context, address string) (any, error) {
	return b.dispatcher.fetchWith(ctx, b, b.resolve(address))
}

// Search finds resources within a scope. An empty scope searches the bound
// service.
func (b *Bridge) Search(ctx context.Context, scope, query string) ([]string, error) {
	if scope == "" {
		scope = b.service
	}
	return b.dispatcher.Search(ctx, scope, query)
}

// Invoke performs an action, resolving relative addresses against the bound
// service.
func (b *Bridge) Invoke(ctx context.Context, action, address string) (any, error) {
	return b.dispatcher.invokeWith(ctx, b, action, b.resolve(address))
}

// Elicit suspends the call and asks the original caller for input.
func (b *Bridge) Elicit(ctx context.Context, message string, schema map[string]any) (*service.ElicitResult, error) {
	if b.elicitor == nil {
		return nil, ErrElicitationUnsupported
	}
	return b.elicitor.Elicit(ctx, ElicitRequest{Message: message, Schema: schema})
}

// Value reads a key from the per-call state.
func (b *Bridge) Value(key string) (any, bool) {
	return b.state.get(key)
}

// SetValue stores a key in the per-call state. The state is shared with
// nested calls made through this bridge.
func (b *Bridge) SetValue(key string, value any) {
	b.state.set(key, value)
}

// boundTo returns a bridge resolving relative addresses against the given
// service. State and elicitor are shared with the receiver.
func (b *Bridge) boundTo(service string) *Bridge {
	if b.service == service {
		return b
	}
	clone := *b
	clone.service = service
	return &clone
}

func (b *Bridge) resolve(address string) string {
	if strings.Contains(address, schemeSeparator) {
		return address
	}
	return b.dispatcher.registry.codec.Build(b.service, address)
}

// callState is the key/value store scoped to one top-level call.
type callState struct {
	mu sync.Mutex
	kv map[string]any
}

func newCallState() *callState {
	return &callState{kv: make(map[string]any)}
}

func (s *callState) get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.kv[key]
	return value, ok
}

func (s *callState) set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
}
