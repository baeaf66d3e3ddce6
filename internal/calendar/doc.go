// Package calendar is the gateway to the Google Calendar API.
//
// It wraps the six calendar operations the agent can invoke (availability
// check, create, update, delete, search, list) as pure request/response
// mappings with light timestamp normalization. No decision logic lives here;
// the agent reacts to failures through observation text, so this package only
// reports errors, it never retries.
//
// A Client carries per-user credentials and must be constructed fresh for
// each authenticated request:
//
//	client, err := calendar.NewClient(ctx, tokenSource)
//	if err != nil {
//	    return err
//	}
//	free, err := client.IsAvailable(ctx, "2025-07-01T10:00:00Z", "2025-07-01T11:00:00Z")
package calendar
