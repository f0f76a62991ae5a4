package tts

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

var azureRoleVoices = map[string]string{
	string(dialogue.RoleUser):      "fr-FR-HenriNeural",
	string(dialogue.RoleAssistant): "fr-FR-DeniseNeural",
}

const azureDefaultVoice = "fr-FR-DeniseNeural"

// Azure speech has no Go SDK; this talks to the REST v1 endpoint directly.
type azureSynth struct {
	key    string
	region string
	client *http.Client
}

// NewAzureSynth returns a Synthesizer backed by the Azure Cognitive
// Services speech REST API.
func NewAzureSynth(key, region string) Synthesizer {
	return &azureSynth{key: key, region: region, client: &http.Client{}}
}

func (a *azureSynth) synthURL() string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", a.region)
}

func (a *azureSynth) voicesURL() string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list", a.region)
}

func (a *azureSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	voice := req.Voice
	if mapped, ok := azureRoleVoices[voice]; ok {
		voice = mapped
	}
	if voice == "" {
		voice = azureDefaultVoice
	}

	var text strings.Builder
	if err := xml.EscapeText(&text, []byte(req.Text)); err != nil {
		return nil, fmt.Errorf("escape ssml text: %w", err)
	}
	ssml := fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>`,
		req.LanguageCode, req.LanguageCode, voice, text.String())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.synthURL(), strings.NewReader(ssml))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", "audio-16khz-32kbitrate-mono-mp3")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure tts synthesis failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("azure tts returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}

func (a *azureSynth) Voices(ctx context.Context, languageCode string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.voicesURL(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", a.key)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure tts list voices failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("azure tts voices returned status %s", resp.Status)
	}

	var entries []struct {
		ShortName string `json:"ShortName"`
		Locale    string `json:"Locale"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode azure voices: %w", err)
	}
	var voices []string
	for _, e := range entries {
		if strings.EqualFold(e.Locale, languageCode) {
			voices = append(voices, e.ShortName)
		}
	}
	return voices, nil
}

func (a *azureSynth) Format() string { return "mp3" }
