// Package gateway implements the mcpweb gateway: a single MCP server that
// aggregates backend services behind scheme://service/path addresses.
//
// The gateway exposes five operations (list_services, list_resources,
// get_resource, search_resources, invoke_action) over any of the supported
// transports and routes each call to the backend owning the addressed
// service.
//
// # Address Model
//
// Every resource lives at an address of the form
//
//	mcpweb://service/path
//
// The scheme is configurable per gateway; "mcpweb" is the default. The
// first path segment after the scheme separator names the service, the
// rest is the service-relative resource path. Addresses under a foreign
// scheme ("email://inbox") are accepted for compatibility with backends
// that predate the gateway: the scheme position names the service and the
// address is forwarded untouched.
//
// # Backend Classes
//
// Backends come in exactly two classes:
//
//   - Mounted: a service definition (internal/service) running in process.
//     Resources are matched against declared paths, with {param} templates
//     resolved via RFC 6570 matching. Handlers receive a Bridge.
//   - Proxied: an external MCP server described by a client config
//     (internal/backend). Every operation opens a fresh connection, calls
//     the backend's tool, and closes the connection.
//
// A name registers at most once per class. When one mounted and one
// proxied backend share a name, the mounted one answers everything except
// the fetch fallback: a failed mounted read retries against the proxied
// registration with the original address.
//
// # Startup Phases
//
// Registration is two-phase. A Builder accumulates Mount and AddProxy
// calls, the Validator probes every proxied backend for the required tool
// surface (recording verdicts on the routes), and Build freezes the result
// into an immutable Registry. After Build the routing table never changes;
// reads need no synchronization and configuration changes require a
// restart.
//
// Validation never aborts startup. A backend that fails its probe stays
// listed with validated=false; calls against it fail with a validation
// error before any connection attempt, and its discovery degrades to a
// stub entry.
//
// # Calls and the Bridge
//
// The Dispatcher carries every operation. Mounted handlers receive a
// Bridge, whose nested Fetch/Search/Invoke re-enter the dispatcher, so a
// mounted service can read another service's resources through exactly the
// routing path external callers use. The bridge also carries per-call
// key/value state and the elicitation channel back to the original caller:
// a handler may suspend mid-call to ask for input (Elicit) without
// blocking concurrent calls.
//
// # Error Kinds
//
// Failures map to sentinel errors callers can test with errors.Is:
// ErrInvalidAddress, ErrUnknownService (message lists the available
// services), ErrValidationFailed, ErrBackendUnavailable (wraps the
// transport cause), ErrResourceUnavailable and ErrUnsupportedAction
// (message lists the supported actions).
//
// # Serving
//
// Server wraps the dispatcher in an MCP server (mark3labs/mcp-go) over
// stdio, SSE or streamable-http, renders its instructions from the backend
// listing, and registers every mounted resource natively so MCP clients
// can browse them via resources/list.
package gateway
