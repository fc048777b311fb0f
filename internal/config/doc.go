// Package config provides configuration management for mcpweb.
//
// Configuration is loaded from a single directory containing config.yaml.
// The default directory is ~/.config/mcpweb; commands accept a custom
// directory via the --config-path flag.
//
// # Configuration Structure
//
// The configuration file uses YAML format:
//
//	gateway:
//	  port: 8090                   # Port for HTTP transports (default: 8090)
//	  host: "localhost"            # Host to bind to (default: localhost)
//	  transport: "streamable-http" # stdio, sse or streamable-http
//	  scheme: "mcpweb"             # Address scheme (default: mcpweb)
//	  skipValidation: false        # Skip startup probing of proxied services
//	services:
//	  - name: email                # Built-in service, runs in process
//	    type: mounted
//	  - name: tickets              # External MCP server, forwarded to
//	    command: "tickets-mcp"
//	    args: ["--stdio"]
//	  - name: wiki
//	    transport: streamable-http
//	    url: "http://localhost:9000/mcp"
//
// Service listing order follows the order of the services section.
//
// # Environment Overrides
//
// MCPWEB_HOST, MCPWEB_PORT, MCPWEB_TRANSPORT and MCPWEB_SCHEME override the
// corresponding gateway values after the file is loaded.
//
// # Usage
//
//	cfg, err := config.LoadConfig(config.GetDefaultConfigPathOrPanic())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Gateway on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
//
// The routing table built from this configuration is immutable for the
// lifetime of the process. The Watcher only reports that a restart is
// required when the file changes.
package config
