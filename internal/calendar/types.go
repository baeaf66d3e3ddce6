package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// EventRecord is a simplified calendar event. Start and End are the
// provider's RFC 3339 timestamps (or bare dates for all-day events), kept as
// strings because the agent passes them through to the model verbatim.
type EventRecord struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Attendees   []string `json:"attendees,omitempty"`
	Status      string   `json:"status,omitempty"`
	HTMLLink    string   `json:"htmlLink,omitempty"`
}

// EventInput is the input for creating a calendar event. Start and End are
// timestamps accepted in ISO 8601 and normalized to RFC 3339 before sending.
type EventInput struct {
	Summary     string
	Description string
	Start       string
	End         string
	Attendees   []string
}

// EventPatch holds the fields of a partial update. Empty strings mean "leave
// untouched"; UpdateEvent overlays only the supplied fields onto the existing
// record.
type EventPatch struct {
	Summary     string
	Description string
	Start       string
	End         string
}

// IsZero reports whether the patch carries no fields at all.
func (p EventPatch) IsZero() bool {
	return p.Summary == "" && p.Description == "" && p.Start == "" && p.End == ""
}

// toEventRecord converts a Google Calendar event to an EventRecord.
func toEventRecord(event *calendar.Event) EventRecord {
	if event == nil {
		return EventRecord{}
	}

	rec := EventRecord{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	if event.Start != nil {
		if event.Start.DateTime != "" {
			rec.Start = event.Start.DateTime
		} else {
			rec.Start = event.Start.Date
		}
	}
	if event.End != nil {
		if event.End.DateTime != "" {
			rec.End = event.End.DateTime
		} else {
			rec.End = event.End.Date
		}
	}

	for _, att := range event.Attendees {
		rec.Attendees = append(rec.Attendees, att.Email)
	}

	return rec
}
