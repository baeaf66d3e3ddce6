package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/supercal/internal/llm"
	"github.com/teemow/supercal/internal/logging"
)

// DefaultMaxTurns bounds the number of Decide/Execute round trips per request
// to protect against a misbehaving model looping forever.
const DefaultMaxTurns = 20

// maxTurnsAnswer is surfaced when the turn guard fires.
const maxTurnsAnswer = "I'm sorry, I wasn't able to complete your request within a reasonable number of steps. Please try rephrasing it or breaking it into smaller requests."

// Event is one streaming event emitted per loop transition. It is a closed
// union of ToolEvent and FinalEvent.
type Event interface {
	isEvent()
}

// ToolEvent reports that the model decided to invoke a tool.
type ToolEvent struct {
	Tool      string         `json:"tool"`
	ToolInput map[string]any `json:"tool_input"`
}

func (ToolEvent) isEvent() {}

// FinalEvent carries the final answer. Exactly one FinalEvent terminates
// every run.
type FinalEvent struct {
	Response string `json:"response"`
}

func (FinalEvent) isEvent() {}

// EmitFunc receives each event immediately after the decision that produced
// it, before the next transition begins. Returning an error abandons the loop
// (used when the client has disconnected).
type EmitFunc func(Event) error

// phase is the orchestrator's state machine state.
type phase int

const (
	phaseDeciding phase = iota
	phaseExecuting
	phaseDone
)

// Orchestrator composes the decision and execution steps into the cyclic
// agent loop. It owns the state transitions and the loop-continuation policy;
// one orchestrator instance serves one chat request.
type Orchestrator struct {
	decider  *Decider
	executor *Executor
	maxTurns int
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTurns overrides the Decide/Execute round-trip bound. Values below 1
// are ignored.
func WithMaxTurns(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.maxTurns = n
		}
	}
}

// NewOrchestrator creates the agent loop for one request, binding the model
// and the per-request tool registry.
func NewOrchestrator(model llm.Client, reg *Registry, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		decider:  NewDecider(model, reg, logger),
		executor: NewExecutor(reg, logger),
		maxTurns: DefaultMaxTurns,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the loop to completion: Deciding and Executing alternate until
// the model produces a FinalAnswer or the turn guard fires. The loop is
// strictly sequential; emit is called synchronously between transitions.
//
// Run returns a non-nil error only when the run was abandoned (context
// cancelled, or emit failed because the client went away). Model and tool
// failures never surface here; they are folded into the conversation.
func (o *Orchestrator) Run(ctx context.Context, input string, history []Message, emit EmitFunc) (*State, error) {
	st := &State{Input: input, History: history}
	turns := 0
	current := phaseDeciding

	for current != phaseDone {
		if err := ctx.Err(); err != nil {
			o.logger.Info("agent loop abandoned",
				logging.Operation("agent.run"),
				slog.Int("turns", turns),
				logging.Err(err))
			return st, fmt.Errorf("agent loop cancelled: %w", err)
		}

		switch current {
		case phaseDeciding:
			if turns >= o.maxTurns {
				fin := &FinalAnswer{Text: maxTurnsAnswer}
				st.Outcome = fin
				o.logger.Warn("max turns exceeded",
					logging.Operation("agent.run"),
					slog.Int("max_turns", o.maxTurns))
				if emit != nil {
					if err := emit(FinalEvent{Response: fin.Text}); err != nil {
						return st, fmt.Errorf("emit final event: %w", err)
					}
				}
				current = phaseDone
				continue
			}
			turns++

			outcome := o.decider.Decide(ctx, st)
			st.Outcome = outcome

			switch oc := outcome.(type) {
			case *ToolInvocation:
				if emit != nil {
					if err := emit(ToolEvent{Tool: oc.Name, ToolInput: oc.Arguments}); err != nil {
						return st, fmt.Errorf("emit tool event: %w", err)
					}
				}
				current = phaseExecuting
			case *FinalAnswer:
				if emit != nil {
					if err := emit(FinalEvent{Response: oc.Text}); err != nil {
						return st, fmt.Errorf("emit final event: %w", err)
					}
				}
				current = phaseDone
			}

		case phaseExecuting:
			inv, ok := st.Outcome.(*ToolInvocation)
			if !ok {
				// Unreachable by construction of the transitions.
				return st, fmt.Errorf("executing phase without a tool invocation")
			}
			o.executor.Execute(ctx, st, inv)
			current = phaseDeciding
		}
	}

	o.logger.Info("agent loop finished",
		logging.Operation("agent.run"),
		slog.Int("turns", turns),
		slog.Int("steps", len(st.Steps)))
	return st, nil
}
