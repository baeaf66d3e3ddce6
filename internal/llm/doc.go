// Package llm abstracts the language model behind a single-method client so
// the agent loop can be exercised with a scripted model in tests.
package llm
