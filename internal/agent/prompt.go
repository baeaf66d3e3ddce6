package agent

import (
	"fmt"
	"sort"
	"strings"
)

// systemInstruction is the fixed instruction prefix for every decision prompt.
// The two placeholders are the rendered tool catalogue and the comma-separated
// tool names.
const systemInstruction = `You are a powerful calendar assistant. You have access to a suite of tools to help users manage their Google Calendar.

CRITICAL INSTRUCTIONS FOR DATE AND TIME:
1. The get_current_time tool is your ONLY source of truth for the current date and time.
2. You MUST ALWAYS use the year provided by this tool when interpreting relative dates like 'today', 'tomorrow', 'next Sunday', or 'next month'.
3. Example: if the user says "list events for next Sunday" and get_current_time returns 2025-06-28T18:45:00, you MUST calculate the date for the upcoming Sunday in the year 2025. Do NOT default to any other year.
4. If a user's request involves a relative date, your first step should be to call get_current_time to establish the correct date context before proceeding.

CRITICAL INSTRUCTIONS FOR MODIFYING EVENTS:
1. Before you can delete or update an event, you MUST know its event_id.
2. If the user refers to an event by name (e.g. "delete the team meeting"), first use the search_events tool to find the event_id for that event.
3. Only after you have the event_id can you use the delete_event or update_event tools.

Respond to the human as helpfully and accurately as possible. You have access to the following tools:

%s

When you receive the result from a tool (especially get_current_time), you MUST use that information to inform your next action. Do not create events in the past unless the user explicitly asks for a past date.

Use a JSON blob to specify a tool by providing an action key (tool name) and an action_input key (tool input).

Valid "action" values: "Final Answer" or %s

Provide only the JSON blob as a response.

The action_input value for a tool must be an object of parameters. Do NOT stringify this object.

When you have the final answer, use the "Final Answer" action. The value for action_input must then be a single string that is your response to the user.

Here is an example of a valid tool-use response:
{
  "action": "create_event",
  "action_input": {
    "summary": "Team Meeting",
    "start": "2025-07-01T10:00:00",
    "end": "2025-07-01T11:00:00"
  }
}

Here is an example of a valid final answer:
{
  "action": "Final Answer",
  "action_input": "I have scheduled the event 'Team Meeting' for you tomorrow at 10 AM."
}`

// renderCatalogue formats the tool catalogue for the system instruction.
// Order follows the registry so the catalogue is identical every turn.
func renderCatalogue(defs []ToolDefinition) string {
	var b strings.Builder
	for i, def := range defs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s\n", def.Name, def.Description)
		if len(def.Schema) == 0 {
			b.WriteString("  Arguments: none\n")
			continue
		}
		b.WriteString("  Arguments:\n")
		for _, arg := range def.Schema {
			req := "optional"
			if arg.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "    - %s (%s, %s)", arg.Name, arg.Type, req)
			if arg.Description != "" {
				fmt.Fprintf(&b, ": %s", arg.Description)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// BuildPrompt constructs the full decision prompt from the tool catalogue,
// prior turns, executed steps, and the new user input.
func BuildPrompt(reg *Registry, st *State) string {
	defs := reg.Describe()

	var b strings.Builder
	fmt.Fprintf(&b, systemInstruction, renderCatalogue(defs), strings.Join(reg.Names(), ", "))
	b.WriteString("\n\n")

	for _, msg := range st.History {
		switch msg.Role {
		case RoleUser:
			fmt.Fprintf(&b, "Human: %s\n", msg.Content)
		case RoleAssistant:
			fmt.Fprintf(&b, "Assistant: %s\n", msg.Content)
		}
	}

	fmt.Fprintf(&b, "Human: %s\n", st.Input)

	// Scratchpad: tool calls already executed this turn and what they
	// returned, so the model can build on earlier observations.
	for _, step := range st.Steps {
		fmt.Fprintf(&b, "Tool call: %s(%s)\nObservation: %s\n",
			step.Invocation.Name, renderArguments(step.Invocation.Arguments), step.Observation)
	}

	b.WriteString("Assistant:")
	return b.String()
}

// renderArguments formats invocation arguments compactly for the scratchpad.
func renderArguments(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, key := range sortedKeys(args) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, args[key]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Map iteration order is random; sort for a deterministic prompt.
	sort.Strings(keys)
	return keys
}
