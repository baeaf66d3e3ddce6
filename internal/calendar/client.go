package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// defaultCalendarID is the calendar every operation targets. The chat agent
// manages the user's primary calendar only.
const defaultCalendarID = "primary"

// Client wraps the Google Calendar service for one authenticated user.
// It carries per-user credentials and must not be shared across requests.
type Client struct {
	svc        *calendar.Service
	calendarID string
	now        func() time.Time
}

// NewClient creates a Calendar client from an opaque, already-validated
// credential. The caller decides where the token came from (stored refresh
// token or a client-held bearer token); the client does not care.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	if ts == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	httpClient := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := httpClient.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: defaultCalendarID,
		now:        time.Now,
	}, nil
}

// IsAvailable reports whether the calendar is free in [start, end): true iff
// the provider returns zero events in the range.
func (c *Client) IsAvailable(ctx context.Context, start, end string) (bool, error) {
	events, err := c.listRange(ctx, start, end, "", 0)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return len(events) == 0, nil
}

// ListEvents lists events in [start, end) ordered by start time.
func (c *Client) ListEvents(ctx context.Context, start, end string) ([]EventRecord, error) {
	events, err := c.listRange(ctx, start, end, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// SearchUpcoming returns up to max events matching the free-text query,
// restricted to events at or after the current moment, ordered by start time.
// It exists because the model cannot delete or update by name; it must first
// resolve a human-readable query to an event identifier.
func (c *Client) SearchUpcoming(ctx context.Context, query string, max int64) ([]EventRecord, error) {
	call := c.svc.Events.List(c.calendarID).
		Q(query).
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if max > 0 {
		call = call.MaxResults(max)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	records := make([]EventRecord, 0, len(result.Items))
	for _, event := range result.Items {
		records = append(records, toEventRecord(event))
	}
	return records, nil
}

// CreateEvent creates a new event. Attendees, if present, map to a list of
// attendee-email objects; an absent or empty list omits the field entirely.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventRecord, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: NormalizeRFC3339(input.Start),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: NormalizeRFC3339(input.End),
			TimeZone: "UTC",
		},
	}

	if len(input.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	rec := toEventRecord(created)
	return &rec, nil
}

// UpdateEvent merges the supplied patch fields into the existing event:
// it reads the current record, overlays only the provided fields, and writes
// the merged record back. Untouched fields are never destroyed.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, patch EventPatch) (*EventRecord, error) {
	existing, err := c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if patch.Summary != "" {
		existing.Summary = patch.Summary
	}
	if patch.Description != "" {
		existing.Description = patch.Description
	}
	if patch.Start != "" {
		existing.Start = &calendar.EventDateTime{
			DateTime: NormalizeRFC3339(patch.Start),
			TimeZone: "UTC",
		}
	}
	if patch.End != "" {
		existing.End = &calendar.EventDateTime{
			DateTime: NormalizeRFC3339(patch.End),
			TimeZone: "UTC",
		}
	}

	updated, err := c.svc.Events.Update(c.calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	rec := toEventRecord(updated)
	return &rec, nil
}

// DeleteEvent deletes an event by ID. A provider-side not-found is reported
// through IsNotFound so callers can treat it as a handled outcome.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a provider not-found response. Google
// returns 410 Gone for events that were already deleted.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}

// listRange is the shared events.list call: singleEvents expansion and
// startTime ordering are always requested.
func (c *Client) listRange(ctx context.Context, start, end, query string, max int64) ([]EventRecord, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(NormalizeRFC3339(start)).
		TimeMax(NormalizeRFC3339(end)).
		SingleEvents(true).
		OrderBy("startTime")
	if query != "" {
		call = call.Q(query)
	}
	if max > 0 {
		call = call.MaxResults(max)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	records := make([]EventRecord, 0, len(result.Items))
	for _, event := range result.Items {
		records = append(records, toEventRecord(event))
	}
	return records, nil
}

// NormalizeRFC3339 makes a best effort to turn an ISO 8601 timestamp into the
// RFC 3339 form the provider expects: a bare local timestamp that carries
// neither a zone designator nor an explicit offset in its final component
// gets a UTC designator appended. Timestamps that already carry zone
// information are returned unchanged.
func NormalizeRFC3339(s string) string {
	if len(s) <= 10 {
		// Bare date or shorter; nothing to normalize.
		return s
	}
	tail := s[10:]
	if strings.ContainsAny(tail, "Zz+") || strings.Contains(tail[1:], "-") {
		return s
	}
	return s + "Z"
}
