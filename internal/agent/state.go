package agent

// Chat roles used in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single prior turn in the conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Outcome is the result of one decision step: either a ToolInvocation or a
// FinalAnswer. It is a closed tagged union; new outcome kinds are not expected.
type Outcome interface {
	isOutcome()
}

// ToolInvocation is the model's request to run a named tool. It is produced
// only by the decision step and consumed exactly once by the execution step.
type ToolInvocation struct {
	Name      string
	Arguments map[string]any
}

func (*ToolInvocation) isOutcome() {}

// FinalAnswer is the model's terminal response to the user. Once present, the
// loop ends.
type FinalAnswer struct {
	Text string
}

func (*FinalAnswer) isOutcome() {}

// Step records one executed tool invocation and its observation text.
type Step struct {
	Invocation  ToolInvocation
	Observation string
}

// State holds the conversation state for a single orchestrator run. It is
// created fresh per chat request, owned exclusively by one run, and never
// persisted.
type State struct {
	// Input is the new user message for this request.
	Input string

	// History holds prior turns, oldest first.
	History []Message

	// Outcome is the most recent decision. Nil before the first decision.
	Outcome Outcome

	// Steps holds executed (invocation, observation) pairs in execution
	// order. Append-only; grows by exactly one per execution step.
	Steps []Step
}
