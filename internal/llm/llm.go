// File path: internal/llm/llm.go
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// GenerateResult is the tagged outcome of a single generator exchange.
// Callers either get a populated result or an error, never a half-filled
// map to probe.
type GenerateResult struct {
	Text  string
	Model string
}

// NewProvider selects a backend from the environment: OpenAI when
// OPENAI_API_KEY is set, otherwise a local Ollama daemon. Returns nil when
// neither backend can be constructed; callers treat nil as "generator
// unavailable" and fall back to deterministic behavior.
func NewProvider() Provider {
	logger := common.Logger()
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
			timeout, err := time.ParseDuration(timeoutStr)
			if err != nil {
				logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
			} else {
				opts = append(opts, option.WithRequestTimeout(timeout))
			}
		}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		}
		client := openai.NewClient(opts...)
		logger.Info("llm: OpenAI provider selected")
		return withConfiguredRateLimit(providers.NewOpenAIProvider(client))
	}
	logger.Info("llm: OPENAI_API_KEY not set; trying local ollama provider")
	provider, err := providers.NewOllamaProvider(os.Getenv("OLLAMA_HOST"), os.Getenv("OLLAMA_MODEL"))
	if err != nil {
		logger.Warn("llm: no generator backend available", "error", err)
		return nil
	}
	return withConfiguredRateLimit(provider)
}

// Generate runs one system+user exchange against the provider and tags the
// result with the serving model.
func Generate(ctx context.Context, provider Provider, system, prompt string) (GenerateResult, error) {
	if provider == nil {
		return GenerateResult{}, fmt.Errorf("no generator provider configured")
	}
	messages := []Message{
		{Role: providers.RoleSystem, Content: system},
		{Role: providers.RoleUser, Content: prompt},
	}
	text, err := provider.Chat(ctx, messages)
	if err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Text: text, Model: provider.Model()}, nil
}
