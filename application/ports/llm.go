package ports

import "context"

// CompletionOptions tunes a single text generation request.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// LLMProvider generates text from a prompt.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	IsAvailable() bool
}
