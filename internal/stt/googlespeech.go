package stt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/lingualabs/langtutor/internal/config"
)

// googleRecognizer performs synchronous recognition against the Google
// Cloud Speech-to-Text API. The client is created lazily so that
// construction never needs network access or credentials.
type googleRecognizer struct {
	cfg    config.STTConfig
	mu     sync.Mutex
	client *speech.Client
}

func newGoogleRecognizer(cfg config.STTConfig) *googleRecognizer {
	return &googleRecognizer{cfg: cfg}
}

func (g *googleRecognizer) ensureClient(ctx context.Context) (*speech.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	var opts []option.ClientOption
	if g.cfg.GoogleCredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(g.cfg.GoogleCredentialsPath))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *googleRecognizer) Recognize(ctx context.Context, wavData []byte, language string) (string, bool, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return "", false, err
	}

	// Files from disk may carry any rate, so trust the WAV header over
	// the configured capture rate.
	sampleRate := g.cfg.SampleRate
	if rate, err := wavSampleRate(wavData); err == nil {
		sampleRate = rate
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wavData},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("speech recognition failed: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		// The service returns an empty result set for unintelligible audio.
		return "", false, nil
	}
	return strings.Join(parts, " "), true, nil
}

// Close releases the underlying API client if one was created.
func (g *googleRecognizer) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}
