package calendar_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/supercal/internal/agent"
)

// RegisterMCPTools exposes the calendar tool catalogue on an MCP server.
// Each tool is declared from its agent definition so the chat loop and the
// MCP transport always agree on names and schemas.
func RegisterMCPTools(s *mcpserver.MCPServer, t *Toolset) error {
	for _, def := range t.Definitions() {
		opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
		for _, arg := range def.Schema {
			argOpts := []mcp.PropertyOption{mcp.Description(mcpArgDescription(arg))}
			if arg.Required {
				argOpts = append(argOpts, mcp.Required())
			}
			// List arguments are declared as comma-separated strings, the
			// convention MCP clients already expect for attendee lists.
			opts = append(opts, mcp.WithString(arg.Name, argOpts...))
		}

		s.AddTool(mcp.NewTool(def.Name, opts...), mcpHandler(def))
	}
	return nil
}

func mcpArgDescription(arg agent.ArgSpec) string {
	if arg.Type == agent.ArgStringList {
		return "Comma-separated list. " + arg.Description
	}
	return arg.Description
}

func mcpHandler(def agent.ToolDefinition) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		for _, arg := range def.Schema {
			if arg.Type != agent.ArgStringList {
				continue
			}
			if raw, ok := args[arg.Name].(string); ok && raw != "" {
				parts := strings.Split(raw, ",")
				for i := range parts {
					parts[i] = strings.TrimSpace(parts[i])
				}
				args[arg.Name] = parts
			}
		}

		observation, err := def.Handler(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(observation), nil
	}
}
