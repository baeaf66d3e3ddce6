package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		ToolDefinition{
			Name:        "get_current_time",
			Description: "Returns the current date and time.",
			Handler: func(_ context.Context, _ map[string]any) (string, error) {
				return "2025-06-28T18:45:00+05:30", nil
			},
		},
	)
	require.NoError(t, err)
	return reg
}

func collectEvents(events *[]Event) EmitFunc {
	return func(ev Event) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestRun_ImmediateFinalAnswer(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "Final Answer", "action_input": "Hello!"}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	var events []Event
	st, err := o.Run(t.Context(), "hi", nil, collectEvents(&events))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, FinalEvent{Response: "Hello!"}, events[0])
	assert.Empty(t, st.Steps)
	fin, ok := st.Outcome.(*FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "Hello!", fin.Text)
}

func TestRun_ToolThenFinal(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "get_current_time", "action_input": {}}`,
		`{"action": "Final Answer", "action_input": "It is Saturday evening."}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	var events []Event
	st, err := o.Run(t.Context(), "what day is it?", nil, collectEvents(&events))

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ToolEvent{Tool: "get_current_time", ToolInput: map[string]any{}}, events[0])
	assert.Equal(t, FinalEvent{Response: "It is Saturday evening."}, events[1])

	require.Len(t, st.Steps, 1)
	assert.Equal(t, "get_current_time", st.Steps[0].Invocation.Name)
	assert.Equal(t, "2025-06-28T18:45:00+05:30", st.Steps[0].Observation)

	// The second prompt must carry the first observation in the scratchpad.
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1], "Observation: 2025-06-28T18:45:00+05:30")
}

func TestRun_MaxTurnsGuard(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "get_current_time", "action_input": {}}`,
		`{"action": "get_current_time", "action_input": {}}`,
		`{"action": "get_current_time", "action_input": {}}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil, WithMaxTurns(2))

	var events []Event
	st, err := o.Run(t.Context(), "loop forever", nil, collectEvents(&events))

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, FinalEvent{Response: maxTurnsAnswer}, events[2])
	assert.Len(t, st.Steps, 2)
	assert.Len(t, model.prompts, 2, "the guard fires before a third model call")
}

func TestRun_ContextCancelled(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "Final Answer", "action_input": "never reached"}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var events []Event
	_, err := o.Run(ctx, "hi", nil, collectEvents(&events))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, events)
	assert.Empty(t, model.prompts)
}

func TestRun_EmitFailureAbandonsLoop(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "get_current_time", "action_input": {}}`,
		`{"action": "Final Answer", "action_input": "done"}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	clientGone := errors.New("client disconnected")
	st, err := o.Run(t.Context(), "hi", nil, func(Event) error {
		return clientGone
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, clientGone)
	assert.Empty(t, st.Steps, "the tool must not run after the client went away")
	assert.Len(t, model.prompts, 1)
}

func TestRun_ModelFailureEndsLoopGracefully(t *testing.T) {
	model := &scriptedModel{err: errors.New("quota exceeded")}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	var events []Event
	_, err := o.Run(t.Context(), "hi", nil, collectEvents(&events))

	require.NoError(t, err)
	require.Len(t, events, 1)
	fin, ok := events[0].(FinalEvent)
	require.True(t, ok)
	assert.Equal(t, "An error occurred with the language model: quota exceeded", fin.Response)
}

func TestRun_NilEmit(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "Final Answer", "action_input": "quiet"}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	st, err := o.Run(t.Context(), "hi", nil, nil)
	require.NoError(t, err)
	fin, ok := st.Outcome.(*FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "quiet", fin.Text)
}

func TestRun_HistoryFlowsIntoPrompt(t *testing.T) {
	model := &scriptedModel{responses: []string{
		`{"action": "Final Answer", "action_input": "As I said, Tuesday."}`,
	}}
	o := NewOrchestrator(model, loopRegistry(t), nil)

	history := []Message{
		{Role: RoleUser, Content: "when is the review?"},
		{Role: RoleAssistant, Content: "The review is on Tuesday."},
	}
	_, err := o.Run(t.Context(), "say that again", history, nil)

	require.NoError(t, err)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Human: when is the review?\n")
	assert.Contains(t, model.prompts[0], "Assistant: The review is on Tuesday.\n")
}
