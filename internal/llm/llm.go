// Package llm wraps the hosted language model behind small interfaces
// so the rest of the assistant can be tested without network calls.
package llm

import "context"

// Chatter produces a completion for a single prompt.
type Chatter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Client is the full model surface the assistant uses.
type Client interface {
	Chatter
	Embedder
}
