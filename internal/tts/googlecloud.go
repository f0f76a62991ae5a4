package tts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

// Distinct French WaveNet voices per speaker so the two sides of a
// dialogue sound different.
var googleRoleVoices = map[string]string{
	string(dialogue.RoleUser):      "fr-FR-Wavenet-B",
	string(dialogue.RoleAssistant): "fr-FR-Wavenet-C",
}

const googleDefaultVoice = "fr-FR-Wavenet-C"

type googleCloudSynth struct {
	credentialsPath string

	mu     sync.Mutex
	client *texttospeech.Client
}

// NewGoogleCloudSynth returns a Synthesizer backed by Google Cloud
// Text-to-Speech. The API client is constructed lazily on first use and
// reused afterwards.
func NewGoogleCloudSynth(credentialsPath string) Synthesizer {
	return &googleCloudSynth{credentialsPath: credentialsPath}
}

func (g *googleCloudSynth) ensureClient(ctx context.Context) (*texttospeech.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	var opts []option.ClientOption
	if g.credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentialsPath))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create google tts client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *googleCloudSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	voice := req.Voice
	if mapped, ok := googleRoleVoices[voice]; ok {
		voice = mapped
	}
	if voice == "" {
		voice = googleDefaultVoice
	}

	resp, err := client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: req.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: req.LanguageCode,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google tts synthesis failed: %w", err)
	}
	return resp.GetAudioContent(), nil
}

func (g *googleCloudSynth) Voices(ctx context.Context, languageCode string) ([]string, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: languageCode})
	if err != nil {
		return nil, fmt.Errorf("google tts list voices failed: %w", err)
	}
	var voices []string
	for _, v := range resp.GetVoices() {
		for _, code := range v.GetLanguageCodes() {
			if strings.EqualFold(code, languageCode) {
				voices = append(voices, v.GetName())
				break
			}
		}
	}
	return voices, nil
}

func (g *googleCloudSynth) Format() string { return "mp3" }
