package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/supercal/internal/agent"
	"github.com/teemow/supercal/internal/calendar"
)

// searchResultLimit caps how many matches search_events reports back to the
// model. The model only needs enough context to pick an event ID.
const searchResultLimit = 10

// DefaultTimezone is the reference timezone get_current_time reports in when
// no other timezone is configured.
const DefaultTimezone = "Asia/Kolkata"

// Gateway is the calendar surface the tool handlers operate on. It is
// implemented by calendar.Client and by test fakes.
type Gateway interface {
	IsAvailable(ctx context.Context, start, end string) (bool, error)
	ListEvents(ctx context.Context, start, end string) ([]calendar.EventRecord, error)
	SearchUpcoming(ctx context.Context, query string, max int64) ([]calendar.EventRecord, error)
	CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.EventRecord, error)
	UpdateEvent(ctx context.Context, eventID string, patch calendar.EventPatch) (*calendar.EventRecord, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Toolset binds the calendar tool catalogue to one gateway. A Toolset carries
// a per-request credential through its gateway and must not be shared across
// requests.
type Toolset struct {
	gateway Gateway
	loc     *time.Location
	now     func() time.Time
}

// Option configures a Toolset.
type Option func(*Toolset)

// WithLocation sets the reference timezone reported by get_current_time.
func WithLocation(loc *time.Location) Option {
	return func(t *Toolset) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(t *Toolset) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a Toolset over the given gateway.
func New(gw Gateway, opts ...Option) *Toolset {
	t := &Toolset{
		gateway: gw,
		now:     time.Now,
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		t.loc = loc
	} else {
		t.loc = time.UTC
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Definitions returns the full tool catalogue in its canonical order.
func (t *Toolset) Definitions() []agent.ToolDefinition {
	return []agent.ToolDefinition{
		{
			Name:        "check_availability",
			Description: "Check if the calendar is free between start and end (ISO 8601).",
			Schema: []agent.ArgSpec{
				{Name: "start", Type: agent.ArgString, Required: true, Description: "Start of the time slot in ISO 8601 format."},
				{Name: "end", Type: agent.ArgString, Required: true, Description: "End of the time slot in ISO 8601 format."},
			},
			Handler: t.checkAvailability,
		},
		{
			Name:        "create_event",
			Description: "Create a calendar event with the given summary (title), time, attendees, and optional description.",
			Schema: []agent.ArgSpec{
				{Name: "summary", Type: agent.ArgString, Required: true, Description: "The title of the event."},
				{Name: "start", Type: agent.ArgString, Required: true, Description: "Start time in ISO 8601 format."},
				{Name: "end", Type: agent.ArgString, Required: true, Description: "End time in ISO 8601 format."},
				{Name: "attendees", Type: agent.ArgStringList, Required: false, Description: "Email addresses of attendees to invite."},
				{Name: "description", Type: agent.ArgString, Required: false, Description: "An optional description for the event."},
			},
			Handler: t.createEvent,
		},
		{
			Name:        "update_event",
			Description: "Update an existing calendar event's summary (title), start/end time, or description.",
			Schema: []agent.ArgSpec{
				{Name: "event_id", Type: agent.ArgString, Required: true, Description: "The ID of the event to update."},
				{Name: "summary", Type: agent.ArgString, Required: false, Description: "The new title for the event."},
				{Name: "start", Type: agent.ArgString, Required: false, Description: "The new start time in ISO 8601 format."},
				{Name: "end", Type: agent.ArgString, Required: false, Description: "The new end time in ISO 8601 format."},
				{Name: "description", Type: agent.ArgString, Required: false, Description: "The new description for the event."},
			},
			Handler: t.updateEvent,
		},
		{
			Name:        "delete_event",
			Description: "Delete a calendar event with the given event_id. Always use search_events to find the event_id first.",
			Schema: []agent.ArgSpec{
				{Name: "event_id", Type: agent.ArgString, Required: true, Description: "The ID of the event to delete."},
			},
			Handler: t.deleteEvent,
		},
		{
			Name:        "search_events",
			Description: "Search for events by name to find their event_id.",
			Schema: []agent.ArgSpec{
				{Name: "query", Type: agent.ArgString, Required: true, Description: "The name of the event to search for."},
			},
			Handler: t.searchEvents,
		},
		{
			Name:        "list_events",
			Description: "List calendar events in the specified date range (ISO 8601).",
			Schema: []agent.ArgSpec{
				{Name: "start", Type: agent.ArgString, Required: true, Description: "Start of the range in ISO 8601 format."},
				{Name: "end", Type: agent.ArgString, Required: true, Description: "End of the range in ISO 8601 format."},
			},
			Handler: t.listEvents,
		},
		{
			Name:        "get_current_time",
			Description: fmt.Sprintf("Returns the current date and time in the %s timezone in ISO 8601 format.", t.loc),
			Schema:      nil,
			Handler:     t.getCurrentTime,
		},
	}
}

// Registry builds an agent tool registry from the catalogue.
func (t *Toolset) Registry() (*agent.Registry, error) {
	return agent.NewRegistry(t.Definitions()...)
}

func (t *Toolset) checkAvailability(ctx context.Context, args map[string]any) (string, error) {
	start, _ := args["start"].(string)
	end, _ := args["end"].(string)

	available, err := t.gateway.IsAvailable(ctx, start, end)
	if err != nil {
		return "", err
	}
	if available {
		return "Available", nil
	}
	return "Busy", nil
}

func (t *Toolset) createEvent(ctx context.Context, args map[string]any) (string, error) {
	input := calendar.EventInput{
		Summary:     stringArg(args, "summary"),
		Start:       stringArg(args, "start"),
		End:         stringArg(args, "end"),
		Description: stringArg(args, "description"),
	}
	if attendees, ok := args["attendees"].([]string); ok {
		input.Attendees = attendees
	}

	event, err := t.gateway.CreateEvent(ctx, input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Event created: %s", event.HTMLLink), nil
}

func (t *Toolset) updateEvent(ctx context.Context, args map[string]any) (string, error) {
	eventID := stringArg(args, "event_id")
	patch := calendar.EventPatch{
		Summary:     stringArg(args, "summary"),
		Start:       stringArg(args, "start"),
		End:         stringArg(args, "end"),
		Description: stringArg(args, "description"),
	}
	if patch.IsZero() {
		return "No update values provided.", nil
	}

	event, err := t.gateway.UpdateEvent(ctx, eventID, patch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Event updated: %s", event.HTMLLink), nil
}

func (t *Toolset) deleteEvent(ctx context.Context, args map[string]any) (string, error) {
	eventID := stringArg(args, "event_id")

	if err := t.gateway.DeleteEvent(ctx, eventID); err != nil {
		if calendar.IsNotFound(err) {
			return "", fmt.Errorf("event %s not found (it may already have been deleted)", eventID)
		}
		return "", err
	}
	return "Event deleted.", nil
}

func (t *Toolset) searchEvents(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")

	events, err := t.gateway.SearchUpcoming(ctx, query, searchResultLimit)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return fmt.Sprintf("No events found matching %q.", query), nil
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, fmt.Sprintf("ID: %s, Summary: %s, Start: %s", event.ID, event.Summary, event.Start))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Toolset) listEvents(ctx context.Context, args map[string]any) (string, error) {
	start := stringArg(args, "start")
	end := stringArg(args, "end")

	events, err := t.gateway.ListEvents(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "No events found.", nil
	}

	// Raw records as JSON so the model can pick out event IDs.
	data, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to encode events: %w", err)
	}
	return string(data), nil
}

func (t *Toolset) getCurrentTime(_ context.Context, _ map[string]any) (string, error) {
	return t.now().In(t.loc).Format(time.RFC3339), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
