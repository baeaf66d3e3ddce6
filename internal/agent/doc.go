// Package agent implements the core agent execution loop.
//
// The loop is a small explicit state machine that alternates between asking a
// language model to decide the next action (Decider) and executing the chosen
// tool against the calendar backend (Executor), feeding each observation back
// into the next prompt until the model emits a final answer.
//
// Tools are plain (name, schema, handler) triples held in a Registry; the
// model's decision is a tagged union of ToolInvocation and FinalAnswer. Model
// failures and malformed output are recovered locally so a chat request always
// produces a natural-language answer.
//
// Example usage:
//
//	reg, _ := agent.NewRegistry(defs...)
//	orch := agent.NewOrchestrator(model, reg, slog.Default())
//	state, err := orch.Run(ctx, "am I free tomorrow?", history, emit)
package agent
