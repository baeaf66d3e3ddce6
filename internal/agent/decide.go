package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/supercal/internal/llm"
	"github.com/teemow/supercal/internal/logging"
)

// finalAnswerAction is the literal action value the model uses to finish.
const finalAnswerAction = "Final Answer"

// Decider runs the agent decision step: it builds the prompt from the
// conversation state, invokes the model once, and parses the response into an
// Outcome. All failure modes degrade into a FinalAnswer so the request never
// dies here.
type Decider struct {
	model  llm.Client
	reg    *Registry
	logger *slog.Logger
}

// NewDecider creates a decision step bound to a model and a tool registry.
func NewDecider(model llm.Client, reg *Registry, logger *slog.Logger) *Decider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decider{model: model, reg: reg, logger: logger}
}

// Decide performs one decision. It never returns an error: a failed model
// invocation is synthesized into a FinalAnswer describing the failure, and
// unparseable output becomes a FinalAnswer carrying the raw text.
func (d *Decider) Decide(ctx context.Context, st *State) Outcome {
	prompt := BuildPrompt(d.reg, st)

	raw, err := d.model.Generate(ctx, prompt)
	if err != nil {
		d.logger.Warn("model invocation failed",
			logging.Operation("agent.decide"),
			logging.Err(err))
		return &FinalAnswer{
			Text: fmt.Sprintf("An error occurred with the language model: %v", err),
		}
	}

	outcome, err := parseAction(raw)
	if err != nil {
		// Degraded but visible: surface the raw text as the answer.
		d.logger.Debug("model output was not valid action JSON, using raw text",
			logging.Operation("agent.decide"),
			logging.Err(err))
		return &FinalAnswer{Text: strings.TrimSpace(raw)}
	}

	return outcome
}

// actionEnvelope is the JSON response contract expected from the model.
type actionEnvelope struct {
	Action      string          `json:"action"`
	ActionInput json.RawMessage `json:"action_input"`
}

// parseAction parses the model's raw text into an Outcome. The text may wrap
// the JSON object in markdown code fences or surrounding prose; the first
// top-level object found is used.
func parseAction(raw string) (Outcome, error) {
	blob, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var env actionEnvelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return nil, fmt.Errorf("invalid action JSON: %w", err)
	}
	if env.Action == "" {
		return nil, fmt.Errorf("action JSON missing %q key", "action")
	}

	if env.Action == finalAnswerAction {
		var text string
		if err := json.Unmarshal(env.ActionInput, &text); err != nil {
			// Tolerate a non-string action_input rather than losing
			// the model's answer.
			text = strings.TrimSpace(string(env.ActionInput))
		}
		return &FinalAnswer{Text: text}, nil
	}

	args := make(map[string]any)
	if len(env.ActionInput) > 0 {
		if err := json.Unmarshal(env.ActionInput, &args); err != nil {
			return nil, fmt.Errorf("action_input for tool %q is not an object: %w", env.Action, err)
		}
	}
	return &ToolInvocation{Name: env.Action, Arguments: args}, nil
}

// extractJSONObject returns the first balanced top-level JSON object in s,
// skipping markdown code fences and any prose around it.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object")
}
