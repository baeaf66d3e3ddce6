package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel returns canned responses in order, recording each prompt.
type scriptedModel struct {
	responses []string
	err       error
	prompts   []string
}

func (m *scriptedModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func TestDecide_ToolInvocation(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "search_events", "action_input": {"query": "team meeting"}}`,
	}}
	d := NewDecider(model, testRegistry(t), nil)

	outcome := d.Decide(t.Context(), &State{Input: "find the team meeting"})

	inv, ok := outcome.(*ToolInvocation)
	require.True(t, ok, "expected a tool invocation, got %T", outcome)
	assert.Equal(t, "search_events", inv.Name)
	assert.Equal(t, map[string]any{"query": "team meeting"}, inv.Arguments)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Human: find the team meeting")
}

func TestDecide_FinalAnswer(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "Final Answer", "action_input": "You have two meetings tomorrow."}`,
	}}
	d := NewDecider(model, testRegistry(t), nil)

	outcome := d.Decide(t.Context(), &State{Input: "what's tomorrow?"})

	fin, ok := outcome.(*FinalAnswer)
	require.True(t, ok, "expected a final answer, got %T", outcome)
	assert.Equal(t, "You have two meetings tomorrow.", fin.Text)
}

func TestDecide_ModelError(t *testing.T) {
	model := &scriptedModel{err: errors.New("quota exceeded")}
	d := NewDecider(model, testRegistry(t), nil)

	outcome := d.Decide(t.Context(), &State{Input: "hello"})

	fin, ok := outcome.(*FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "An error occurred with the language model: quota exceeded", fin.Text)
}

func TestDecide_UnparseableOutput(t *testing.T) {
	model := &scriptedModel{responses: []string{"  Hello there!  "}}
	d := NewDecider(model, testRegistry(t), nil)

	outcome := d.Decide(t.Context(), &State{Input: "hi"})

	fin, ok := outcome.(*FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "Hello there!", fin.Text)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantTool string
		wantArgs map[string]any
		wantText string
		wantErr  bool
	}{
		{
			name:     "plain tool action",
			raw:      `{"action": "get_current_time", "action_input": {}}`,
			wantTool: "get_current_time",
			wantArgs: map[string]any{},
		},
		{
			name:     "missing action_input",
			raw:      `{"action": "get_current_time"}`,
			wantTool: "get_current_time",
			wantArgs: map[string]any{},
		},
		{
			name: "fenced in markdown",
			raw: "```json\n" +
				`{"action": "search_events", "action_input": {"query": "standup"}}` +
				"\n```",
			wantTool: "search_events",
			wantArgs: map[string]any{"query": "standup"},
		},
		{
			name:     "surrounded by prose",
			raw:      `Sure, let me check. {"action": "Final Answer", "action_input": "Done."} Hope that helps!`,
			wantText: "Done.",
		},
		{
			name:     "final answer with object input",
			raw:      `{"action": "Final Answer", "action_input": {"note": "odd"}}`,
			wantText: `{"note": "odd"}`,
		},
		{
			name:     "braces inside string values",
			raw:      `{"action": "Final Answer", "action_input": "use {curly} braces"}`,
			wantText: "use {curly} braces",
		},
		{
			name:    "no JSON object",
			raw:     "just some text",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			raw:     `{"action": "search_events"`,
			wantErr: true,
		},
		{
			name:    "missing action key",
			raw:     `{"action_input": {"query": "x"}}`,
			wantErr: true,
		},
		{
			name:    "stringified action_input for a tool",
			raw:     `{"action": "search_events", "action_input": "standup"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := parseAction(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantTool != "" {
				inv, ok := outcome.(*ToolInvocation)
				require.True(t, ok, "expected tool invocation, got %T", outcome)
				assert.Equal(t, tt.wantTool, inv.Name)
				assert.Equal(t, tt.wantArgs, inv.Arguments)
				return
			}
			fin, ok := outcome.(*FinalAnswer)
			require.True(t, ok, "expected final answer, got %T", outcome)
			assert.Equal(t, tt.wantText, fin.Text)
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, err := extractJSONObject(`prefix {"a": {"b": "}"}} suffix`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": "}"}}`, got)

	got, err = extractJSONObject(`{"a": "esc \" {"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": "esc \" {"}`, got)
}
