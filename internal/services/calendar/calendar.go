// Package calendar is the demo scheduling backend. It serves a fixed set of
// events through the gateway operations and three actions: creating,
// rescheduling and cancelling events. Event details are gathered from the
// caller through elicitation, and event creation reaches into the email
// service for attendee suggestions, demonstrating nested cross-service calls.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mcpweb/internal/service"
	"mcpweb/pkg/logging"
)

const instructions = "Calendar management service with event viewing, search, and scheduling capabilities. Resources are available natively via MCP resource system."

// demoDay anchors the today and week views so the demo data is stable.
var demoDay = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// Event is one calendar entry.
type Event struct {
	EventID     string   `json:"event_id"`
	Title       string   `json:"title"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
	Recurring   string   `json:"recurring,omitempty"`
	Description string   `json:"description"`
}

// Calendar is one calendar grouping events.
type Calendar struct {
	CalendarID string `json:"calendar_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	IsPrimary  bool   `json:"is_primary"`
}

var events = []Event{
	{
		EventID:     "evt_001",
		Title:       "Team Standup",
		StartTime:   "2024-01-15T09:00:00Z",
		EndTime:     "2024-01-15T09:30:00Z",
		Location:    "Conference Room A",
		Attendees:   []string{"alice@company.com", "bob@company.com", "charlie@company.com"},
		Recurring:   "daily",
		Description: "Daily team synchronization meeting",
	},
	{
		EventID:     "evt_002",
		Title:       "Product Demo",
		StartTime:   "2024-01-16T14:00:00Z",
		EndTime:     "2024-01-16T15:00:00Z",
		Location:    "Virtual - Zoom",
		Attendees:   []string{"manager@company.com", "product@company.com", "client@external.com"},
		Description: "Q1 product features demonstration for key stakeholders",
	},
	{
		EventID:     "evt_003",
		Title:       "Lunch with Sarah",
		StartTime:   "2024-01-17T12:00:00Z",
		EndTime:     "2024-01-17T13:00:00Z",
		Location:    "Cafe Bistro",
		Attendees:   []string{"user@company.com", "sarah@company.com"},
		Description: "Monthly catch-up lunch",
	},
	{
		EventID:     "evt_004",
		Title:       "Sprint Planning",
		StartTime:   "2024-01-18T10:00:00Z",
		EndTime:     "2024-01-18T12:00:00Z",
		Location:    "Conference Room B",
		Attendees:   []string{"dev-team@company.com"},
		Recurring:   "biweekly",
		Description: "Sprint planning and backlog grooming session",
	},
}

var calendars = []Calendar{
	{CalendarID: "primary", Name: "Primary Calendar", Color: "#4285F4", IsPrimary: true},
	{CalendarID: "team", Name: "Team Calendar", Color: "#0F9D58", IsPrimary: false},
}

// New builds the calendar service definition for mounting into a gateway or
// serving standalone.
func New() *service.Service {
	svc := service.New("calendar", instructions)
	svc.Resource("/today", "Today", "Today's calendar events", getToday)
	svc.Resource("/week", "Week", "This week's events by day", getWeek)
	svc.Resource("/calendars", "Calendars", "All available calendars", getCalendars)
	svc.Resource("/event/{event_id}", "Event", "One event with full details", getEvent)
	svc.Resource("/calendar/{calendar_id}", "Calendar", "One calendar and its events", getCalendar)
	svc.Search(searchEvents)
	svc.Action("create_event", createEvent)
	svc.Action("reschedule_event", rescheduleEvent)
	svc.Action("cancel_event", cancelEvent)
	return svc
}

func getToday(ctx context.Context, req *service.Request) (any, error) {
	todays := []map[string]any{}
	for _, e := range events {
		if !sameDay(e.StartTime, demoDay) {
			continue
		}
		todays = append(todays, map[string]any{
			"event_id":   e.EventID,
			"title":      e.Title,
			"start_time": e.StartTime,
			"end_time":   e.EndTime,
			"location":   e.Location,
			"attendees":  e.Attendees,
		})
	}
	return map[string]any{
		"date":        demoDay.Format("2006-01-02"),
		"event_count": len(todays),
		"events":      todays,
	}, nil
}

func getWeek(ctx context.Context, req *service.Request) (any, error) {
	weekStart := demoDay
	weekEnd := demoDay.AddDate(0, 0, 6)

	weeks := []map[string]any{}
	for _, e := range events {
		start, err := time.Parse(time.RFC3339, e.StartTime)
		if err != nil {
			continue
		}
		day := start.Truncate(24 * time.Hour)
		if day.Before(weekStart) || day.After(weekEnd) {
			continue
		}
		weeks = append(weeks, map[string]any{
			"event_id":    e.EventID,
			"title":       e.Title,
			"start_time":  e.StartTime,
			"end_time":    e.EndTime,
			"location":    e.Location,
			"day_of_week": start.Weekday().String(),
		})
	}
	return map[string]any{
		"week_start":  weekStart.Format("2006-01-02"),
		"week_end":    weekEnd.Format("2006-01-02"),
		"event_count": len(weeks),
		"events":      weeks,
	}, nil
}

func getCalendars(ctx context.Context, req *service.Request) (any, error) {
	return map[string]any{
		"calendar_count": len(calendars),
		"calendars":      calendars,
	}, nil
}

func getEvent(ctx context.Context, req *service.Request) (any, error) {
	e, ok := eventByID(req.Param("event_id"))
	if !ok {
		return nil, fmt.Errorf("event '%s' not found", req.Param("event_id"))
	}
	return e, nil
}

func getCalendar(ctx context.Context, req *service.Request) (any, error) {
	var cal *Calendar
	for i := range calendars {
		if calendars[i].CalendarID == req.Param("calendar_id") {
			cal = &calendars[i]
			break
		}
	}
	if cal == nil {
		return nil, fmt.Errorf("calendar '%s' not found", req.Param("calendar_id"))
	}

	summaries := make([]map[string]any, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, map[string]any{
			"event_id":   e.EventID,
			"title":      e.Title,
			"start_time": e.StartTime,
			"end_time":   e.EndTime,
		})
	}
	return map[string]any{
		"calendar_id": cal.CalendarID,
		"name":        cal.Name,
		"color":       cal.Color,
		"is_primary":  cal.IsPrimary,
		"events":      summaries,
	}, nil
}

func searchEvents(ctx context.Context, query string) ([]string, error) {
	q := strings.ToLower(query)
	matches := []string{}
	for _, e := range events {
		if matchesEvent(e, q) {
			matches = append(matches, "/event/"+e.EventID)
		}
	}
	return matches, nil
}

func matchesEvent(e Event, q string) bool {
	if strings.Contains(strings.ToLower(e.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Location), q) {
		return true
	}
	for _, a := range e.Attendees {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(e.Description), q)
}

// createEvent gathers event details from the caller. When the caller names no
// attendees the handler fetches the email inbox through the session and
// suggests the participants of the most recent thread.
func createEvent(ctx context.Context, call *service.ActionCall) (any, error) {
	answer, err := call.Session.Elicit(ctx, "Create new calendar event", eventSchema())
	if err != nil {
		return nil, err
	}

	switch answer.Action {
	case service.ElicitCancel:
		return "Event creation cancelled by user", nil
	case service.ElicitDecline:
		return "Event creation declined by user", nil
	case service.ElicitAccept:
	default:
		return nil, fmt.Errorf("unknown elicitation action: %s", answer.Action)
	}

	title := answer.StringField("title", "")
	attendees := splitList(answer.StringField("attendees", ""))

	result := map[string]any{
		"result":      fmt.Sprintf("Event '%s' created successfully", title),
		"event_id":    fmt.Sprintf("evt_%03d", len(events)+1),
		"title":       title,
		"start_time":  answer.StringField("start_time", ""),
		"end_time":    answer.StringField("end_time", ""),
		"location":    answer.StringField("location", ""),
		"attendees":   attendees,
		"description": answer.StringField("description", ""),
	}
	if len(attendees) == 0 {
		if suggested := suggestAttendees(ctx, call.Session); len(suggested) > 0 {
			result["suggested_attendees"] = suggested
		}
	}
	return result, nil
}

// suggestAttendees reads the email inbox through the gateway and returns the
// participants of the most recently updated thread. Suggestions are best
// effort; any failure yields none.
func suggestAttendees(ctx context.Context, session service.Session) []string {
	payload, err := session.Fetch(ctx, "mcpweb://email/inbox")
	if err != nil {
		logging.Debug("calendar", "Inbox unavailable for attendee suggestions: %v", err)
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var view struct {
		Inbox struct {
			Threads []struct {
				Participants []string `json:"participants"`
				LastUpdated  string   `json:"last_updated"`
			} `json:"threads"`
		} `json:"inbox"`
	}
	if err := json.Unmarshal(raw, &view); err != nil || len(view.Inbox.Threads) == 0 {
		return nil
	}

	latest := view.Inbox.Threads[0]
	for _, t := range view.Inbox.Threads[1:] {
		if t.LastUpdated > latest.LastUpdated {
			latest = t
		}
	}
	return latest.Participants
}

func rescheduleEvent(ctx context.Context, call *service.ActionCall) (any, error) {
	eventID := lastSegment(call.Address)
	e, ok := eventByID(eventID)
	if !ok {
		return nil, fmt.Errorf("event '%s' not found", eventID)
	}

	message := fmt.Sprintf("Reschedule event: '%s' (currently %s to %s)", e.Title, e.StartTime, e.EndTime)
	answer, err := call.Session.Elicit(ctx, message, rescheduleSchema())
	if err != nil {
		return nil, err
	}

	switch answer.Action {
	case service.ElicitCancel:
		return "Reschedule cancelled by user", nil
	case service.ElicitDecline:
		return "Reschedule declined by user", nil
	case service.ElicitAccept:
	default:
		return nil, fmt.Errorf("unknown elicitation action: %s", answer.Action)
	}

	newStart := answer.StringField("new_start_time", "")
	notify := answer.BoolField("notify_attendees")
	notification := " without notifications"
	if notify {
		notification = " with notifications"
	}

	return map[string]any{
		"result":             fmt.Sprintf("Event '%s' rescheduled to %s%s", e.Title, newStart, notification),
		"event_id":           e.EventID,
		"title":              e.Title,
		"old_start_time":     e.StartTime,
		"old_end_time":       e.EndTime,
		"new_start_time":     newStart,
		"new_end_time":       answer.StringField("new_end_time", ""),
		"notified_attendees": notify,
	}, nil
}

func cancelEvent(ctx context.Context, call *service.ActionCall) (any, error) {
	eventID := lastSegment(call.Address)
	e, ok := eventByID(eventID)
	if !ok {
		return nil, fmt.Errorf("event '%s' not found", eventID)
	}
	return map[string]any{
		"result":             fmt.Sprintf("Event '%s' has been cancelled", e.Title),
		"event_id":           e.EventID,
		"title":              e.Title,
		"cancelled_time":     e.StartTime,
		"attendees_notified": e.Attendees,
	}, nil
}

func eventSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "description": "Event title"},
			"start_time":  map[string]any{"type": "string", "description": "Start time (ISO format, e.g., 2024-01-20T14:00:00Z)"},
			"end_time":    map[string]any{"type": "string", "description": "End time (ISO format, e.g., 2024-01-20T15:00:00Z)"},
			"location":    map[string]any{"type": "string", "description": "Location (optional)"},
			"attendees":   map[string]any{"type": "string", "description": "Attendees (comma-separated emails, optional)"},
			"description": map[string]any{"type": "string", "description": "Event description (optional)"},
		},
		"required": []string{"title", "start_time", "end_time"},
	}
}

func rescheduleSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"new_start_time":   map[string]any{"type": "string", "description": "New start time (ISO format)"},
			"new_end_time":     map[string]any{"type": "string", "description": "New end time (ISO format)"},
			"notify_attendees": map[string]any{"type": "boolean", "description": "Send notifications to attendees"},
		},
		"required": []string{"new_start_time", "new_end_time"},
	}
}

func eventByID(id string) (Event, bool) {
	for _, e := range events {
		if e.EventID == id {
			return e, true
		}
	}
	return Event{}, false
}

func sameDay(iso string, day time.Time) bool {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func lastSegment(address string) string {
	if i := strings.LastIndex(address, "/"); i >= 0 {
		return address[i+1:]
	}
	return address
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	parts := []string{}
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
