package llm

import "context"

// Client generates a completion for a prompt. Implementations must be safe
// for concurrent use; one client is shared across all chat requests.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
