package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrTool      = "tool"
	attrModel     = "model"
	attrOutcome   = "outcome"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeStreams       metric.Int64UpDownCounter

	// Agent metrics
	modelInvocationsTotal   metric.Int64Counter
	modelInvocationDuration metric.Float64Histogram
	agentTurns              metric.Int64Histogram
	toolInvocationsTotal    metric.Int64Counter
	toolDuration            metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeStreams, err = meter.Int64UpDownCounter(
		"active_streams",
		metric.WithDescription("Number of chat streams currently open"),
		metric.WithUnit("{stream}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_streams gauge: %w", err)
	}

	// Agent Metrics
	m.modelInvocationsTotal, err = meter.Int64Counter(
		"agent_model_invocations_total",
		metric.WithDescription("Total number of language model invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_model_invocations_total counter: %w", err)
	}

	m.modelInvocationDuration, err = meter.Float64Histogram(
		"agent_model_invocation_duration_seconds",
		metric.WithDescription("Language model invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_model_invocation_duration_seconds histogram: %w", err)
	}

	m.agentTurns, err = meter.Int64Histogram(
		"agent_turns",
		metric.WithDescription("Number of decide/execute turns taken per chat request"),
		metric.WithUnit("{turn}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8, 13, 20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_turns histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"agent_tool_invocations_total",
		metric.WithDescription("Total number of agent tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"agent_tool_duration_seconds",
		metric.WithDescription("Agent tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_tool_duration_seconds histogram: %w", err)
	}

	// Google API Metrics
	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordModelInvocation records one language model call.
// Status should be "success" or "error".
func (m *Metrics) RecordModelInvocation(ctx context.Context, model, status string, duration time.Duration) {
	if m.modelInvocationsTotal == nil || m.modelInvocationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrModel, model),
		attribute.String(attrStatus, status),
	}

	m.modelInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.modelInvocationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAgentTurns records how many decide/execute turns a chat request took
// before producing its final answer. Outcome distinguishes normal completions
// from max-turns exhaustion.
func (m *Metrics) RecordAgentTurns(ctx context.Context, turns int, outcome string) {
	if m.agentTurns == nil {
		return // Instrumentation not initialized
	}

	m.agentTurns.Record(ctx, int64(turns), metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}

// RecordToolInvocation records an agent tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordGoogleAPIOperation records a Google API operation with service,
// operation, status, and duration.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.googleAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveStreams increments the open stream gauge.
func (m *Metrics) IncrementActiveStreams(ctx context.Context) {
	if m.activeStreams == nil {
		return // Instrumentation not initialized
	}

	m.activeStreams.Add(ctx, 1)
}

// DecrementActiveStreams decrements the open stream gauge.
func (m *Metrics) DecrementActiveStreams(ctx context.Context) {
	if m.activeStreams == nil {
		return // Instrumentation not initialized
	}

	m.activeStreams.Add(ctx, -1)
}
