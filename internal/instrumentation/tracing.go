package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the supercal package.
const TracerName = "github.com/teemow/supercal"

// Span attribute keys for operations.
const (
	// SpanAttrTool is the agent tool name attribute.
	SpanAttrTool = "agent.tool"

	// SpanAttrTurn is the agent loop turn number attribute.
	SpanAttrTurn = "agent.turn"

	// SpanAttrModel is the language model name attribute.
	SpanAttrModel = "agent.model"

	// SpanAttrService is the Google service name attribute.
	SpanAttrService = "google.service"

	// SpanAttrOperation is the operation type attribute.
	SpanAttrOperation = "google.operation"

	// SpanAttrStatus is the operation status attribute.
	SpanAttrStatus = "agent.status"
)

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an agent tool execution.
func StartToolSpan(ctx context.Context, toolName string, turn int) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(
			attribute.String(SpanAttrTool, toolName),
			attribute.Int(SpanAttrTurn, turn),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartModelSpan starts a span for a language model invocation.
func StartModelSpan(ctx context.Context, model string, turn int) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "model.generate",
		trace.WithAttributes(
			attribute.String(SpanAttrModel, model),
			attribute.Int(SpanAttrTurn, turn),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartGoogleAPISpan starts a span for Google API operations.
func StartGoogleAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(
			attribute.String(SpanAttrService, service),
			attribute.String(SpanAttrOperation, operation),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
