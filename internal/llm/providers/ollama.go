// File path: internal/llm/providers/ollama.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/agrostack/cropdoctor/internal/common"
)

// OllamaProvider serves chat and embeddings from a local Ollama daemon.
type OllamaProvider struct {
	llm   *ollama.LLM
	model string
}

func NewOllamaProvider(serverURL, model string) (*OllamaProvider, error) {
	if strings.TrimSpace(model) == "" {
		model = "llama3"
	}
	opts := []ollama.Option{ollama.WithModel(model)}
	if trimmed := strings.TrimSpace(serverURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init ollama: %w", err)
	}
	common.Logger().Info("llm: ollama provider configured", "model", model)
	return &OllamaProvider{llm: client, model: model}, nil
}

func (o *OllamaProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	resp, err := o.llm.GenerateContent(ctx, content)
	if err != nil {
		common.Logger().Error("llm: ollama chat failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Content, nil
}

func (o *OllamaProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if len(input) == 0 {
		return nil, nil
	}
	vectors, err := o.llm.CreateEmbedding(ctx, input)
	if err != nil {
		common.Logger().Error("llm: ollama embedding failed", "error", err)
		return nil, err
	}
	return vectors, nil
}

func (o *OllamaProvider) Name() string {
	return "ollama"
}

func (o *OllamaProvider) Model() string {
	return o.model
}
