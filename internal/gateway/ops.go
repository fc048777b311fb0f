package gateway

// Gateway operation tool names. The gateway serves these on its own MCP
// surface and calls the backend-side four on proxied services.
const (
	ToolListServices    = "list_services"
	ToolListResources   = "list_resources"
	ToolGetResource     = "get_resource"
	ToolSearchResources = "search_resources"
	ToolInvokeAction    = "invoke_action"
)

// RequiredTools are the operations a proxied backend must expose to pass
// startup validation. list_services stays gateway-only.
var RequiredTools = []string{
	ToolListResources,
	ToolGetResource,
	ToolSearchResources,
	ToolInvokeAction,
}
