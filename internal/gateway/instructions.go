package gateway

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// instructionsTemplate renders the gateway's server instructions from the
// backend listing.
const instructionsTemplate = `Gateway server providing five core operations (LIST, VIEW, GET, FIND, POST) for aggregating MCP services with automatic resource prefixing.

Operations:
- list_services: enumerate the registered services
- list_resources: inspect one service's instructions and resources
- get_resource: read a resource by address ({{ .Scheme }}://service/path)
- search_resources: find resource addresses matching a query
- invoke_action: perform a named action against a resource
{{- if .Services }}

Services:
{{- range .Services }}
- {{ .Name }} ({{ .Kind }}{{ if .Resources }}, {{ .Resources }} {{ .Resources | plural "resource" "resources" }}{{ end }})
{{- end }}
{{- end }}
`

// renderInstructions builds the instruction text served during the MCP
// initialize handshake. Proxied entries that failed validation are omitted
// from the service list but still appear in list_services output.
func renderInstructions(scheme string, backends []BackendInfo) (string, error) {
	tmpl, err := template.New("instructions").Funcs(sprig.TxtFuncMap()).Parse(instructionsTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse instructions template: %w", err)
	}

	available := make([]BackendInfo, 0, len(backends))
	for _, backend := range backends {
		if backend.Validated != nil && !*backend.Validated {
			continue
		}
		available = append(available, backend)
	}

	data := struct {
		Scheme   string
		Services []BackendInfo
	}{
		Scheme:   scheme,
		Services: available,
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render instructions: %w", err)
	}
	return strings.TrimRight(out.String(), "\n"), nil
}
