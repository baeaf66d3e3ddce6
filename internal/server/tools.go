package server

import (
	"context"
	"time"

	"github.com/teemow/supercal/internal/agent"
	"github.com/teemow/supercal/internal/instrumentation"
)

// instrumentedTools wraps each tool handler with a span and an invocation
// metric. The turn counter is shared across the set, so one set must serve
// exactly one request. The agent loop runs handlers sequentially.
func instrumentedTools(defs []agent.ToolDefinition, metrics *instrumentation.Metrics) []agent.ToolDefinition {
	turn := 0
	out := make([]agent.ToolDefinition, len(defs))
	for i, def := range defs {
		inner := def.Handler
		name := def.Name
		def.Handler = func(ctx context.Context, args map[string]any) (string, error) {
			turn++
			ctx, span := instrumentation.StartToolSpan(ctx, name, turn)
			defer span.End()

			began := time.Now()
			obs, err := inner(ctx, args)

			status := instrumentation.StatusSuccess
			if err != nil {
				status = instrumentation.StatusError
				instrumentation.SetSpanError(span, err)
			} else {
				instrumentation.SetSpanSuccess(span)
			}
			metrics.RecordToolInvocation(ctx, name, status, time.Since(began))
			return obs, err
		}
		out[i] = def
	}
	return out
}
