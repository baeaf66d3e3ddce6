package server

import (
	"context"
	"time"

	"github.com/teemow/supercal/internal/instrumentation"
	"github.com/teemow/supercal/internal/llm"
)

// instrumentedModel wraps the language model client with metrics and spans.
type instrumentedModel struct {
	inner   llm.Client
	name    string
	metrics *instrumentation.Metrics
	turn    int
}

func newInstrumentedModel(inner llm.Client, name string, metrics *instrumentation.Metrics) *instrumentedModel {
	return &instrumentedModel{inner: inner, name: name, metrics: metrics}
}

func (m *instrumentedModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.turn++
	ctx, span := instrumentation.StartModelSpan(ctx, m.name, m.turn)
	defer span.End()

	began := time.Now()
	out, err := m.inner.Generate(ctx, prompt)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	m.metrics.RecordModelInvocation(ctx, m.name, status, time.Since(began))
	instrumentation.SetSpanError(span, err)
	return out, err
}
