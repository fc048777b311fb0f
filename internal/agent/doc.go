// Package agent provides the interactive MCP client for the mcpweb gateway.
//
// The Client wraps the raw MCP tool-call protocol with typed helpers for the
// five gateway operations, decoding listings and discovery payloads into view
// structs. The REPL builds an interactive shell on top of it with readline
// line editing, command history, tab completion over service names, and
// table rendering of listings.
//
// Backends can suspend a call to ask the original caller for input. The
// ElicitationPrompter answers those requests on the terminal: it shows the
// backend's message, asks for accept/decline/cancel, and collects one value
// per schema field.
//
// Quick start:
//
//	logger := agent.NewLogger(true, true, false)
//	client := agent.NewClient("http://localhost:8090/mcp", logger, agent.TransportStreamableHTTP)
//	client.SetElicitationHandler(agent.NewElicitationPrompter(logger, os.Stdin))
//	repl := agent.NewREPL(client, logger)
//	repl.Run(ctx)
package agent
