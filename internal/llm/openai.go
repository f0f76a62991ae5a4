package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

type openAIGenerator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenAIGenerator returns a Generator backed by the OpenAI chat
// completions API.
func NewOpenAIGenerator(apiKey, model string) Generator {
	return &openAIGenerator{
		apiKey:   apiKey,
		model:    model,
		endpoint: openAIEndpoint,
		client:   &http.Client{},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *openAIGenerator) Complete(ctx context.Context, system string, msgs []ChatMessage, maxTokens int) (string, error) {
	payload := openAIRequest{
		Model:       g.model,
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}
	if system != "" {
		payload.Messages = append(payload.Messages, openAIMessage{Role: "system", Content: system})
	}
	for _, m := range msgs {
		role := "assistant"
		if m.Role == dialogue.RoleUser {
			role = "user"
		}
		payload.Messages = append(payload.Messages, openAIMessage{Role: role, Content: m.Content})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed openAIResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if resp.StatusCode >= 300 {
		if parsed.Error != nil {
			return "", fmt.Errorf("openai returned %s: %s", resp.Status, parsed.Error.Message)
		}
		return "", fmt.Errorf("openai returned status %s", resp.Status)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
