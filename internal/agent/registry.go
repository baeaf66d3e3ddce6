package agent

import (
	"context"
	"fmt"
)

// ArgType describes the expected type of a tool argument.
type ArgType string

// Supported argument types.
const (
	ArgString     ArgType = "string"
	ArgStringList ArgType = "list of strings"
)

// ArgSpec describes one parameter of a tool.
type ArgSpec struct {
	Name        string
	Type        ArgType
	Required    bool
	Description string
}

// Handler executes a tool invocation and returns the observation text.
// Handlers close over a per-request calendar binding, so a ToolDefinition set
// must not be shared across requests or users.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// ToolDefinition binds a tool name and argument schema to a handler, with a
// human-readable description used to instruct the model.
type ToolDefinition struct {
	Name        string
	Description string
	Schema      []ArgSpec
	Handler     Handler
}

// UnknownToolError indicates that an invocation named a tool outside the
// registered catalogue.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Registry is an immutable mapping from tool name to ToolDefinition.
// It is read-only after construction and safe to share across goroutines.
type Registry struct {
	order []string
	defs  map[string]ToolDefinition
}

// NewRegistry builds a registry from the given definitions. Duplicate tool
// names are rejected rather than silently overwritten, since a duplicate
// almost always means a wiring mistake.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{
		defs: make(map[string]ToolDefinition, len(defs)),
	}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool definition with empty name")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", def.Name)
		}
		if _, exists := r.defs[def.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", def.Name)
		}
		r.defs[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

// Resolve returns the definition for the named tool, or an UnknownToolError
// if it is not registered.
func (r *Registry) Resolve(name string) (ToolDefinition, error) {
	def, ok := r.defs[name]
	if !ok {
		return ToolDefinition{}, &UnknownToolError{Name: name}
	}
	return def, nil
}

// Describe returns all definitions in registration order. The order is stable
// across calls so the model sees a consistent tool catalogue every turn.
func (r *Registry) Describe() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
