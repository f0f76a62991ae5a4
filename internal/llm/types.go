package llm

import (
	"context"
	"fmt"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/dialogue"
)

// ChatMessage is one entry of the conversation context sent to a backend.
type ChatMessage struct {
	Role    dialogue.Role
	Content string
}

// Generator defines a pluggable LLM backend. Variants differ only in how
// they format the request and extract the response text; everything else
// (prompting, parsing, context windows) lives in the Service.
type Generator interface {
	Complete(ctx context.Context, system string, msgs []ChatMessage, maxTokens int) (string, error)
}

// NewGenerator selects the backend named by the configuration. It fails
// fast when the selected provider's credential is absent.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case config.LLMOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai api key is required when llm.provider=%s", config.LLMOpenAI)
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case config.LLMGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini api key is required when llm.provider=%s", config.LLMGemini)
		}
		return NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	}
	return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
}
