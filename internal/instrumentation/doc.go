// Package instrumentation provides OpenTelemetry instrumentation for the
// supercal server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_streams: Gauge of chat streams currently open
//
// Agent Metrics:
//   - agent_model_invocations_total: Counter of model calls by model and status
//   - agent_model_invocation_duration_seconds: Histogram of model call durations
//   - agent_turns: Histogram of turns taken per chat request
//   - agent_tool_invocations_total: Counter of tool invocations by tool and status
//   - agent_tool_duration_seconds: Histogram of tool execution durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of calendar API operations
//   - google_api_operation_duration_seconds: Histogram of operation durations
//
// # Tracing
//
// Spans are created for chat request handling, agent decision and execution
// steps, and calendar API calls.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: supercal)
package instrumentation
