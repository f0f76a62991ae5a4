package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

type geminiGenerator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiGenerator returns a Generator backed by the Gemini
// generateContent API. Gemini has no separate system/history channel in
// this API shape, so the whole context is flattened into one prompt.
func NewGeminiGenerator(apiKey, model string) Generator {
	return &geminiGenerator{
		apiKey:   apiKey,
		model:    model,
		endpoint: geminiEndpoint,
		client:   &http.Client{},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *geminiGenerator) Complete(ctx context.Context, system string, msgs []ChatMessage, _ int) (string, error) {
	prompt := g.flatten(system, msgs)
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if resp.StatusCode >= 300 {
		if parsed.Error != nil {
			return "", fmt.Errorf("gemini returned %s: %s", resp.Status, parsed.Error.Message)
		}
		return "", fmt.Errorf("gemini returned status %s", resp.Status)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func (g *geminiGenerator) flatten(system string, msgs []ChatMessage) string {
	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	if len(msgs) > 1 {
		b.WriteString("Historique de la conversation:\n")
		for _, m := range msgs[:len(msgs)-1] {
			fmt.Fprintf(&b, "%s: %s\n", dialogue.SpeakerLabel(m.Role), m.Content)
		}
		b.WriteString("\n")
	}
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		if len(msgs) > 1 {
			fmt.Fprintf(&b, "Nouvelle entrée de l'utilisateur: %s\n\nRépondez naturellement en français pour continuer la conversation.", last.Content)
		} else {
			b.WriteString(last.Content)
		}
	}
	return b.String()
}
