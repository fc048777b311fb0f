// Package email is the demo mail backend. It serves a small fixed mailbox
// through the gateway operations: an inbox listing, per-thread reads, search
// over subjects and participants, and a reply action that gathers the reply
// through elicitation.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mcpweb/internal/service"
)

const instructions = "Email management service with thread, search, and reply capabilities. Resources are available natively via MCP resource system."

// DraftIDKey is the call-state key the reply action stores the draft ID
// under, so later handlers in the same call can reference it.
const DraftIDKey = "email.last_draft_id"

// ThreadSummary is one inbox entry.
type ThreadSummary struct {
	ThreadID     string   `json:"thread_id"`
	Subject      string   `json:"subject"`
	Participants []string `json:"participants"`
	LastUpdated  string   `json:"last_updated"`
	UnreadCount  int      `json:"unread_count"`
}

// Thread is a full email thread.
type Thread struct {
	ThreadSummary
	Content string `json:"content"`
}

var threads = []Thread{
	{
		ThreadSummary: ThreadSummary{
			ThreadID:     "thread_001",
			Subject:      "Project Update Meeting",
			Participants: []string{"alice@company.com", "bob@company.com"},
			LastUpdated:  "2024-01-15T10:30:00Z",
			UnreadCount:  2,
		},
		Content: "Can we schedule a meeting for next week to discuss the project updates? I'd like to review the latest milestones.",
	},
	{
		ThreadSummary: ThreadSummary{
			ThreadID:     "thread_002",
			Subject:      "Budget Review Q1",
			Participants: []string{"manager@company.com", "finance@company.com"},
			LastUpdated:  "2024-01-14T15:45:00Z",
			UnreadCount:  0,
		},
		Content: "Please review the Q1 budget numbers and let me know if you have any questions. The finance team needs feedback by Friday.",
	},
}

// New builds the email service definition for mounting into a gateway or
// serving standalone.
func New() *service.Service {
	svc := service.New("email", instructions)
	svc.Resource("/inbox", "Inbox", "All email threads with unread counts", getInbox)
	svc.Resource("/thread/{thread_id}", "Thread", "One email thread with participants and content", getThread)
	svc.Search(searchThreads)
	svc.Action("reply_thread", replyThread)
	return svc
}

func getInbox(ctx context.Context, req *service.Request) (any, error) {
	summaries := make([]ThreadSummary, 0, len(threads))
	for _, t := range threads {
		summaries = append(summaries, t.ThreadSummary)
	}
	return map[string]any{
		"inbox": map[string]any{
			"total_threads": len(summaries),
			"threads":       summaries,
		},
	}, nil
}

func getThread(ctx context.Context, req *service.Request) (any, error) {
	t, ok := threadByID(req.Param("thread_id"))
	if !ok {
		return nil, fmt.Errorf("thread '%s' not found", req.Param("thread_id"))
	}
	return t, nil
}

func searchThreads(ctx context.Context, query string) ([]string, error) {
	q := strings.ToLower(query)
	matches := []string{}
	for _, t := range threads {
		if matchesThread(t, q) {
			matches = append(matches, "/thread/"+t.ThreadID)
		}
	}
	return matches, nil
}

func matchesThread(t Thread, q string) bool {
	if strings.Contains(strings.ToLower(t.Subject), q) {
		return true
	}
	for _, p := range t.Participants {
		if strings.Contains(strings.ToLower(p), q) {
			return true
		}
	}
	return false
}

// replyThread drafts a reply to a thread. The reply details come from the
// original caller through elicitation; accept sends or saves the reply,
// decline and cancel abort it.
func replyThread(ctx context.Context, call *service.ActionCall) (any, error) {
	threadID := lastSegment(call.Address)
	t, ok := threadByID(threadID)
	if !ok {
		return nil, fmt.Errorf("thread '%s' not found", threadID)
	}

	defaultRecipients := strings.Join(t.Participants, ", ")
	answer, err := call.Session.Elicit(ctx, fmt.Sprintf("Replying to: '%s'", t.Subject), replySchema(defaultRecipients))
	if err != nil {
		return nil, err
	}

	switch answer.Action {
	case service.ElicitCancel:
		return "Reply cancelled by user", nil
	case service.ElicitDecline:
		return "Reply declined by user", nil
	case service.ElicitAccept:
	default:
		return nil, fmt.Errorf("unknown elicitation action: %s", answer.Action)
	}

	recipients := splitRecipients(answer.StringField("recipients", defaultRecipients))
	content := answer.StringField("content", "")
	sendNow := answer.BoolField("send_immediately")

	draftID := uuid.NewString()
	call.Session.SetValue(DraftIDKey, draftID)

	var result string
	if sendNow {
		result = fmt.Sprintf("Reply sent to %s: %s", strings.Join(recipients, ", "), snippet(content))
	} else {
		result = fmt.Sprintf("Reply saved as draft for %s: %s", strings.Join(recipients, ", "), snippet(content))
	}
	return map[string]any{
		"result":           result,
		"draft_id":         draftID,
		"recipients":       recipients,
		"content":          content,
		"sent_immediately": sendNow,
	}, nil
}

func replySchema(defaultRecipients string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recipients": map[string]any{
				"type":        "string",
				"description": fmt.Sprintf("Recipients (comma-separated, default: %s)", defaultRecipients),
				"default":     defaultRecipients,
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Your reply content",
			},
			"send_immediately": map[string]any{
				"type":        "boolean",
				"description": "Send immediately or save as draft",
				"default":     false,
			},
		},
	}
}

func threadByID(id string) (Thread, bool) {
	for _, t := range threads {
		if t.ThreadID == id {
			return t, true
		}
	}
	return Thread{}, false
}

// lastSegment extracts the thread ID from an address or returns a bare ID
// unchanged.
func lastSegment(address string) string {
	if i := strings.LastIndex(address, "/"); i >= 0 {
		return address[i+1:]
	}
	return address
}

func splitRecipients(raw string) []string {
	parts := []string{}
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func snippet(s string) string {
	if len(s) > 50 {
		s = s[:50]
	}
	return s + "..."
}
