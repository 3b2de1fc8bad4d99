// File path: internal/llm/providers/provider.go

// Package providers holds the concrete generative-model backends. Callers go
// through the llm package, which picks a provider from the environment.
package providers

import "context"

// Message is a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Provider is the contract every generative backend satisfies: chat
// completion, text embedding, and identification for audit fields. The same
// provider must serve both index-time and query-time embeddings, or
// similarity scores silently degrade.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
	Model() string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
