package server

import (
	"context"
	"time"

	"github.com/teemow/supercal/internal/calendar"
	"github.com/teemow/supercal/internal/instrumentation"
	"github.com/teemow/supercal/internal/tools/calendar_tools"
)

// instrumentedGateway wraps a calendar gateway with per-operation metrics and
// trace spans. All chat requests go through it so every Google API call shows
// up in google_api_operations_total.
type instrumentedGateway struct {
	inner   calendar_tools.Gateway
	metrics *instrumentation.Metrics
}

func newInstrumentedGateway(inner calendar_tools.Gateway, metrics *instrumentation.Metrics) *instrumentedGateway {
	return &instrumentedGateway{inner: inner, metrics: metrics}
}

func (g *instrumentedGateway) record(ctx context.Context, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	g.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
}

func (g *instrumentedGateway) IsAvailable(ctx context.Context, start, end string) (bool, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList)
	defer span.End()

	began := time.Now()
	available, err := g.inner.IsAvailable(ctx, start, end)
	g.record(ctx, instrumentation.OperationList, began, err)
	instrumentation.SetSpanError(span, err)
	return available, err
}

func (g *instrumentedGateway) ListEvents(ctx context.Context, start, end string) ([]calendar.EventRecord, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationList)
	defer span.End()

	began := time.Now()
	events, err := g.inner.ListEvents(ctx, start, end)
	g.record(ctx, instrumentation.OperationList, began, err)
	instrumentation.SetSpanError(span, err)
	return events, err
}

func (g *instrumentedGateway) SearchUpcoming(ctx context.Context, query string, max int64) ([]calendar.EventRecord, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationSearch)
	defer span.End()

	began := time.Now()
	events, err := g.inner.SearchUpcoming(ctx, query, max)
	g.record(ctx, instrumentation.OperationSearch, began, err)
	instrumentation.SetSpanError(span, err)
	return events, err
}

func (g *instrumentedGateway) CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.EventRecord, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate)
	defer span.End()

	began := time.Now()
	event, err := g.inner.CreateEvent(ctx, input)
	g.record(ctx, instrumentation.OperationCreate, began, err)
	instrumentation.SetSpanError(span, err)
	return event, err
}

func (g *instrumentedGateway) UpdateEvent(ctx context.Context, eventID string, patch calendar.EventPatch) (*calendar.EventRecord, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationUpdate)
	defer span.End()

	began := time.Now()
	event, err := g.inner.UpdateEvent(ctx, eventID, patch)
	g.record(ctx, instrumentation.OperationUpdate, began, err)
	instrumentation.SetSpanError(span, err)
	return event, err
}

func (g *instrumentedGateway) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationDelete)
	defer span.End()

	began := time.Now()
	err := g.inner.DeleteEvent(ctx, eventID)
	g.record(ctx, instrumentation.OperationDelete, began, err)
	instrumentation.SetSpanError(span, err)
	return err
}
