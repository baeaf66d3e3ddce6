package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/teemow/supercal/internal/calendar"
)

// fakeGateway records calls and returns scripted results.
type fakeGateway struct {
	available    bool
	events       []calendar.EventRecord
	created      *calendar.EventRecord
	updated      *calendar.EventRecord
	err          error
	deleteErr    error
	lastInput    calendar.EventInput
	lastPatch    calendar.EventPatch
	lastEventID  string
	lastQuery    string
	lastMax      int64
	deletedCalls int
}

func (f *fakeGateway) IsAvailable(_ context.Context, _, _ string) (bool, error) {
	return f.available, f.err
}

func (f *fakeGateway) ListEvents(_ context.Context, _, _ string) ([]calendar.EventRecord, error) {
	return f.events, f.err
}

func (f *fakeGateway) SearchUpcoming(_ context.Context, query string, max int64) ([]calendar.EventRecord, error) {
	f.lastQuery = query
	f.lastMax = max
	return f.events, f.err
}

func (f *fakeGateway) CreateEvent(_ context.Context, input calendar.EventInput) (*calendar.EventRecord, error) {
	f.lastInput = input
	return f.created, f.err
}

func (f *fakeGateway) UpdateEvent(_ context.Context, eventID string, patch calendar.EventPatch) (*calendar.EventRecord, error) {
	f.lastEventID = eventID
	f.lastPatch = patch
	return f.updated, f.err
}

func (f *fakeGateway) DeleteEvent(_ context.Context, eventID string) error {
	f.lastEventID = eventID
	f.deletedCalls++
	return f.deleteErr
}

func newTestToolset(gw Gateway) *Toolset {
	return New(gw,
		WithLocation(time.UTC),
		WithClock(func() time.Time {
			return time.Date(2025, 6, 28, 18, 45, 0, 0, time.UTC)
		}),
	)
}

func handlerFor(t *testing.T, ts *Toolset, name string) func(context.Context, map[string]any) (string, error) {
	t.Helper()
	for _, def := range ts.Definitions() {
		if def.Name == name {
			return def.Handler
		}
	}
	t.Fatalf("tool %q not in catalogue", name)
	return nil
}

func TestDefinitions_Catalogue(t *testing.T) {
	ts := newTestToolset(&fakeGateway{})
	defs := ts.Definitions()

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}

	assert.Equal(t, []string{
		"check_availability",
		"create_event",
		"update_event",
		"delete_event",
		"search_events",
		"list_events",
		"get_current_time",
	}, names)

	reg, err := ts.Registry()
	require.NoError(t, err)
	assert.Equal(t, len(defs), reg.Len())
}

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		want      string
	}{
		{name: "free slot", available: true, want: "Available"},
		{name: "occupied slot", available: false, want: "Busy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestToolset(&fakeGateway{available: tt.available})
			handler := handlerFor(t, ts, "check_availability")

			got, err := handler(context.Background(), map[string]any{
				"start": "2025-07-01T10:00:00Z",
				"end":   "2025-07-01T11:00:00Z",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateEvent(t *testing.T) {
	gw := &fakeGateway{
		created: &calendar.EventRecord{
			ID:       "abc123",
			HTMLLink: "https://calendar.google.com/event?eid=abc123",
		},
	}
	ts := newTestToolset(gw)
	handler := handlerFor(t, ts, "create_event")

	got, err := handler(context.Background(), map[string]any{
		"summary":     "Team Sync",
		"start":       "2025-07-01T10:00:00Z",
		"end":         "2025-07-01T11:00:00Z",
		"attendees":   []string{"a@example.com", "b@example.com"},
		"description": "Weekly sync",
	})
	require.NoError(t, err)
	assert.Equal(t, "Event created: https://calendar.google.com/event?eid=abc123", got)
	assert.Equal(t, "Team Sync", gw.lastInput.Summary)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gw.lastInput.Attendees)
	assert.Equal(t, "Weekly sync", gw.lastInput.Description)
}

func TestCreateEvent_GatewayError(t *testing.T) {
	ts := newTestToolset(&fakeGateway{err: errors.New("insert failed")})
	handler := handlerFor(t, ts, "create_event")

	_, err := handler(context.Background(), map[string]any{
		"summary": "Team Sync",
		"start":   "2025-07-01T10:00:00Z",
		"end":     "2025-07-01T11:00:00Z",
	})
	assert.ErrorContains(t, err, "insert failed")
}

func TestUpdateEvent(t *testing.T) {
	gw := &fakeGateway{
		updated: &calendar.EventRecord{
			ID:       "abc123",
			HTMLLink: "https://calendar.google.com/event?eid=abc123",
		},
	}
	ts := newTestToolset(gw)
	handler := handlerFor(t, ts, "update_event")

	got, err := handler(context.Background(), map[string]any{
		"event_id": "abc123",
		"summary":  "Renamed Sync",
	})
	require.NoError(t, err)
	assert.Equal(t, "Event updated: https://calendar.google.com/event?eid=abc123", got)
	assert.Equal(t, "abc123", gw.lastEventID)
	assert.Equal(t, "Renamed Sync", gw.lastPatch.Summary)
}

func TestUpdateEvent_NoValues(t *testing.T) {
	gw := &fakeGateway{}
	ts := newTestToolset(gw)
	handler := handlerFor(t, ts, "update_event")

	got, err := handler(context.Background(), map[string]any{
		"event_id": "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "No update values provided.", got)
	assert.Empty(t, gw.lastEventID, "gateway should not be called without update values")
}

func TestDeleteEvent(t *testing.T) {
	gw := &fakeGateway{}
	ts := newTestToolset(gw)
	handler := handlerFor(t, ts, "delete_event")

	got, err := handler(context.Background(), map[string]any{"event_id": "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "Event deleted.", got)
	assert.Equal(t, 1, gw.deletedCalls)
}

func TestDeleteEvent_NotFound(t *testing.T) {
	gw := &fakeGateway{
		deleteErr: &googleapi.Error{Code: 404, Message: "Not Found"},
	}
	ts := newTestToolset(gw)
	handler := handlerFor(t, ts, "delete_event")

	_, err := handler(context.Background(), map[string]any{"event_id": "gone"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "event gone not found")
	assert.ErrorContains(t, err, "already have been deleted")
}

func TestSearchEvents(t *testing.T) {
	gw := &fakeGateway{
		events: []calendar.EventRecord{
			{ID: "e1", Summary: "Team Sync", Start: "2025-07-01T10:00:00Z"},
			{ID: "e2", Summary: "Team Sync Retro", Start: "2025-07-02T10:00:00Z"},
		},
	}
	ts := newTestToolset(gw)
	handler := handlerFor(t, ts, "search_events")

	got, err := handler(context.Background(), map[string]any{"query": "Team Sync"})
	require.NoError(t, err)
	assert.Equal(t,
		"ID: e1, Summary: Team Sync, Start: 2025-07-01T10:00:00Z\n"+
			"ID: e2, Summary: Team Sync Retro, Start: 2025-07-02T10:00:00Z",
		got)
	assert.Equal(t, "Team Sync", gw.lastQuery)
	assert.Equal(t, int64(searchResultLimit), gw.lastMax)
}

func TestSearchEvents_NoMatches(t *testing.T) {
	ts := newTestToolset(&fakeGateway{})
	handler := handlerFor(t, ts, "search_events")

	got, err := handler(context.Background(), map[string]any{"query": "Standup"})
	require.NoError(t, err)
	assert.Equal(t, `No events found matching "Standup".`, got)
}

func TestListEvents(t *testing.T) {
	records := []calendar.EventRecord{
		{ID: "e1", Summary: "Team Sync", Start: "2025-07-01T10:00:00Z", End: "2025-07-01T11:00:00Z"},
	}
	ts := newTestToolset(&fakeGateway{events: records})
	handler := handlerFor(t, ts, "list_events")

	got, err := handler(context.Background(), map[string]any{
		"start": "2025-07-01T00:00:00Z",
		"end":   "2025-07-02T00:00:00Z",
	})
	require.NoError(t, err)

	var decoded []calendar.EventRecord
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, records, decoded)
}

func TestListEvents_Empty(t *testing.T) {
	ts := newTestToolset(&fakeGateway{})
	handler := handlerFor(t, ts, "list_events")

	got, err := handler(context.Background(), map[string]any{
		"start": "2025-07-01T00:00:00Z",
		"end":   "2025-07-02T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "No events found.", got)
}

func TestGetCurrentTime(t *testing.T) {
	ts := newTestToolset(&fakeGateway{})
	handler := handlerFor(t, ts, "get_current_time")

	got, err := handler(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-28T18:45:00Z", got)
}

func TestGetCurrentTime_DefaultTimezone(t *testing.T) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	ts := New(&fakeGateway{}, WithClock(func() time.Time {
		return time.Date(2025, 6, 28, 13, 15, 0, 0, time.UTC)
	}))
	handler := handlerFor(t, ts, "get_current_time")

	got, err := handler(context.Background(), nil)
	require.NoError(t, err)

	want := time.Date(2025, 6, 28, 13, 15, 0, 0, time.UTC).In(loc).Format(time.RFC3339)
	assert.Equal(t, want, got)
}
