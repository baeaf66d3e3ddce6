package calendar

import (
	"testing"

	calendar "google.golang.org/api/calendar/v3"
)

func TestNormalizeRFC3339(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare local timestamp gets UTC designator",
			input: "2025-01-01T00:00:00",
			want:  "2025-01-01T00:00:00Z",
		},
		{
			name:  "zulu timestamp unchanged",
			input: "2025-01-01T00:00:00Z",
			want:  "2025-01-01T00:00:00Z",
		},
		{
			name:  "positive offset unchanged",
			input: "2025-01-01T00:00:00+05:30",
			want:  "2025-01-01T00:00:00+05:30",
		},
		{
			name:  "negative offset unchanged",
			input: "2025-01-01T00:00:00-08:00",
			want:  "2025-01-01T00:00:00-08:00",
		},
		{
			name:  "fractional seconds without zone",
			input: "2025-06-28T18:45:00.123",
			want:  "2025-06-28T18:45:00.123Z",
		},
		{
			name:  "bare date unchanged",
			input: "2025-01-01",
			want:  "2025-01-01",
		},
		{
			name:  "empty string unchanged",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRFC3339(tt.input); got != tt.want {
				t.Errorf("NormalizeRFC3339(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToEventRecord(t *testing.T) {
	tests := []struct {
		name  string
		input *calendar.Event
		want  EventRecord
	}{
		{
			name:  "nil event",
			input: nil,
			want:  EventRecord{},
		},
		{
			name: "timed event",
			input: &calendar.Event{
				Id:      "evt1",
				Summary: "Team Sync",
				Status:  "confirmed",
				Start:   &calendar.EventDateTime{DateTime: "2025-07-01T10:00:00Z"},
				End:     &calendar.EventDateTime{DateTime: "2025-07-01T11:00:00Z"},
				Attendees: []*calendar.EventAttendee{
					{Email: "a@example.com"},
					{Email: "b@example.com"},
				},
				HtmlLink: "https://calendar.google.com/event?eid=evt1",
			},
			want: EventRecord{
				ID:        "evt1",
				Summary:   "Team Sync",
				Status:    "confirmed",
				Start:     "2025-07-01T10:00:00Z",
				End:       "2025-07-01T11:00:00Z",
				Attendees: []string{"a@example.com", "b@example.com"},
				HTMLLink:  "https://calendar.google.com/event?eid=evt1",
			},
		},
		{
			name: "all-day event uses date",
			input: &calendar.Event{
				Id:      "evt2",
				Summary: "Holiday",
				Start:   &calendar.EventDateTime{Date: "2025-07-04"},
				End:     &calendar.EventDateTime{Date: "2025-07-05"},
			},
			want: EventRecord{
				ID:      "evt2",
				Summary: "Holiday",
				Start:   "2025-07-04",
				End:     "2025-07-05",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toEventRecord(tt.input)
			if got.ID != tt.want.ID || got.Summary != tt.want.Summary ||
				got.Start != tt.want.Start || got.End != tt.want.End ||
				got.Status != tt.want.Status || got.HTMLLink != tt.want.HTMLLink {
				t.Errorf("toEventRecord() = %+v, want %+v", got, tt.want)
			}
			if len(got.Attendees) != len(tt.want.Attendees) {
				t.Errorf("attendees = %v, want %v", got.Attendees, tt.want.Attendees)
			}
		})
	}
}

func TestEventPatch_IsZero(t *testing.T) {
	if !(EventPatch{}).IsZero() {
		t.Error("empty patch should be zero")
	}
	if (EventPatch{Summary: "new title"}).IsZero() {
		t.Error("patch with summary should not be zero")
	}
	if (EventPatch{Start: "2025-01-01T10:00:00Z"}).IsZero() {
		t.Error("patch with start should not be zero")
	}
}

func TestNewClient_NilTokenSource(t *testing.T) {
	_, err := NewClient(t.Context(), nil)
	if err == nil {
		t.Fatal("expected error for nil token source")
	}
}
