package config

const (
	// DefaultHost is the bind host used when none is configured.
	DefaultHost = "localhost"

	// DefaultPort is the bind port used when none is configured.
	DefaultPort = 8090
)

// GetDefaultConfig returns the default configuration. The scheme is left
// empty so the gateway applies its own default.
func GetDefaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			Transport: TransportStreamableHTTP,
		},
	}
}
