package gateway

import "encoding/json"

// BackendKind distinguishes how a backend is reached.
type BackendKind string

const (
	// KindMounted marks a backend running in-process, mounted at startup.
	KindMounted BackendKind = "mounted"
	// KindProxied marks a backend reached through an external MCP server.
	KindProxied BackendKind = "proxied"
)

// BackendInfo is one entry of the backend listing.
type BackendInfo struct {
	// Name is the service name backends are addressed by.
	Name string `json:"name"`
	// Kind reports whether the backend is mounted or proxied.
	Kind BackendKind `json:"kind"`
	// Resources is the number of declared resources, for mounted backends.
	Resources int `json:"resources,omitempty"`
	// Validated reports the startup probe verdict. Only set for proxied
	// backends; mounted backends need no validation.
	Validated *bool `json:"validated,omitempty"`
}

// ResourceInfo describes one addressable resource of a backend.
type ResourceInfo struct {
	// Address is the absolute address the resource is fetched by. Paths with
	// {param} placeholders are templates.
	Address string `json:"address"`
	// Name is the human-readable resource name.
	Name string `json:"name"`
	// Description explains what the resource returns.
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts either a full resource object or a bare address
// string. Minimal backends list plain addresses.
func (ri *ResourceInfo) UnmarshalJSON(data []byte) error {
	var address string
	if err := json.Unmarshal(data, &address); err == nil {
		ri.Address = address
		return nil
	}
	type plain ResourceInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*ri = ResourceInfo(p)
	return nil
}

// Discovery is the result of discovering a backend: its usage instructions
// and resource table.
type Discovery struct {
	Service      string         `json:"service"`
	Instructions string         `json:"instructions"`
	Resources    []ResourceInfo `json:"resources"`
}
