// Package backend provides MCP client connections to proxied backends.
//
// The gateway reaches out-of-process backends through the Client interface,
// with one implementation per transport: StdioClient runs the backend as a
// subprocess, SSEClient and StreamableHTTPClient connect to remote servers.
// NewClient selects the implementation from a ClientConfig; Connect
// additionally performs the protocol handshake.
//
// Connections are intentionally short-lived. The gateway calls Connect for
// each forwarded request and closes the client when the call completes, so
// concurrent calls never share transport state.
package backend
