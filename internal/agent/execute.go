package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/supercal/internal/logging"
)

// Executor runs the tool execution step: it resolves the invoked tool,
// validates the arguments against its schema, runs the handler, and appends
// the (invocation, observation) pair to the state. Every failure mode is
// reported as an observation so the model can self-correct on the next turn.
type Executor struct {
	reg    *Registry
	logger *slog.Logger
}

// NewExecutor creates an execution step bound to a tool registry.
func NewExecutor(reg *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{reg: reg, logger: logger}
}

// Execute runs one tool invocation and returns the observation text. The
// (invocation, observation) pair is appended to st.Steps exactly once.
func (e *Executor) Execute(ctx context.Context, st *State, inv *ToolInvocation) string {
	obs := e.run(ctx, inv)
	st.Steps = append(st.Steps, Step{Invocation: *inv, Observation: obs})
	return obs
}

func (e *Executor) run(ctx context.Context, inv *ToolInvocation) string {
	logger := logging.WithTool(e.logger, inv.Name)

	def, err := e.reg.Resolve(inv.Name)
	if err != nil {
		// The model named a tool outside the catalogue. Report it so
		// the model can pick a valid one.
		logger.Warn("invocation named an unregistered tool",
			logging.Operation("agent.execute"))
		return fmt.Sprintf("Error: %v. Valid tools are: %s.", err, strings.Join(e.reg.Names(), ", "))
	}

	args, problems := normalizeArguments(def, inv.Arguments)
	if len(problems) > 0 {
		logger.Debug("argument validation failed",
			logging.Operation("agent.execute"),
			slog.String("problems", strings.Join(problems, "; ")))
		return fmt.Sprintf("Invalid arguments for tool %s: %s. Please retry with corrected arguments.",
			inv.Name, strings.Join(problems, "; "))
	}

	obs, err := def.Handler(ctx, args)
	if err != nil {
		// Gateway and provider failures become observations; the model
		// decides whether to retry or change strategy.
		logger.Warn("tool handler failed",
			logging.Operation("agent.execute"),
			logging.Err(err))
		return fmt.Sprintf("Error: %v", err)
	}

	logger.Debug("tool executed",
		logging.Operation("agent.execute"),
		logging.Status(logging.StatusSuccess))
	return obs
}

// normalizeArguments validates args against the schema and returns a coerced
// copy for the handler. The original invocation arguments are never mutated.
// Unknown extra keys are dropped silently; models frequently invent them.
func normalizeArguments(def ToolDefinition, args map[string]any) (map[string]any, []string) {
	var problems []string
	out := make(map[string]any, len(def.Schema))

	for _, spec := range def.Schema {
		val, present := args[spec.Name]
		if !present || val == nil {
			if spec.Required {
				problems = append(problems, fmt.Sprintf("missing required argument %q", spec.Name))
			}
			continue
		}

		switch spec.Type {
		case ArgString:
			s, ok := coerceString(val)
			if !ok {
				problems = append(problems, fmt.Sprintf("argument %q must be a string", spec.Name))
				continue
			}
			if s == "" && spec.Required {
				problems = append(problems, fmt.Sprintf("required argument %q is empty", spec.Name))
				continue
			}
			out[spec.Name] = s

		case ArgStringList:
			list, ok := coerceStringList(val)
			if !ok {
				problems = append(problems, fmt.Sprintf("argument %q must be a list of strings", spec.Name))
				continue
			}
			if len(list) > 0 {
				out[spec.Name] = list
			}

		default:
			problems = append(problems, fmt.Sprintf("argument %q has unsupported type %q", spec.Name, spec.Type))
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return out, nil
}

// coerceString accepts strings directly and formats scalar values; JSON
// numbers arrive as float64.
func coerceString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case float64, bool, int, int64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// coerceStringList accepts a JSON array of strings, or a single string which
// is split on commas (models sometimes send "a@x.com, b@y.com").
func coerceStringList(val any) ([]string, bool) {
	switch v := val.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := coerceString(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return v, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, true
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
