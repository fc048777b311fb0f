package config

// Config is the top-level configuration structure for mcpweb.
type Config struct {
	Gateway  GatewayConfig   `yaml:"gateway"`
	Services []ServiceConfig `yaml:"services,omitempty"`
}

// ServiceType selects how a configured service attaches to the gateway.
type ServiceType string

const (
	// ServiceTypeMounted runs one of the built-in services in process.
	ServiceTypeMounted ServiceType = "mounted"
	// ServiceTypeProxied forwards calls to an external MCP server.
	ServiceTypeProxied ServiceType = "proxied"
)

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// GatewayConfig defines how the gateway server binds and serves.
type GatewayConfig struct {
	Port      int    `yaml:"port,omitempty"`      // Port to bind for HTTP transports (default: 8090)
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Transport string `yaml:"transport,omitempty"` // Transport to serve on (default: streamable-http)
	Scheme    string `yaml:"scheme,omitempty"`    // Address scheme (default: mcpweb)
	// SkipValidation registers proxied services without probing them.
	SkipValidation bool `yaml:"skipValidation,omitempty"`
}

// ServiceConfig declares one backend service. Listing order follows the
// order services appear here.
type ServiceConfig struct {
	Name string      `yaml:"name"`
	Type ServiceType `yaml:"type,omitempty"` // defaults to proxied

	// Proxied settings. Transport defaults to stdio when a command is set.
	Transport string            `yaml:"transport,omitempty"`
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	URL       string            `yaml:"url,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
}
