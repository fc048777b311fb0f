// Package service defines the authoring surface for in-process backends.
//
// A Service bundles usage instructions, a table of addressable resources,
// and optional search and action handlers:
//
//	svc := service.New("email", "Read and reply to email threads.")
//	svc.Resource("/inbox", "Inbox", "All email threads", inboxHandler)
//	svc.Resource("/thread/{thread_id}", "Thread", "One thread", threadHandler)
//	svc.Search(searchHandler)
//	svc.Action("reply_thread", replyHandler)
//
// Mounting the service into the gateway rewrites its relative paths into
// absolute addresses (mcpweb://email/inbox) and exposes it through the
// shared routing operations.
//
// Handlers receive a Session implemented by the gateway. Fetch, Search and
// Invoke on the session re-enter the gateway dispatcher, so handlers can
// read resources of other services by address. Elicit suspends the call and
// asks the original caller for input.
package service
