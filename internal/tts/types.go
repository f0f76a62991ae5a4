package tts

import (
	"context"
	"fmt"

	"github.com/lingualabs/langtutor/internal/config"
)

// SynthRequest contains parameters to synthesize one utterance.
type SynthRequest struct {
	Text         string
	Voice        string
	LanguageCode string
}

// Synthesizer is the contract for producing encoded audio. Implementations
// return a complete audio payload in the container format reported by
// Format, and must be substitutable without changing caller code.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthRequest) ([]byte, error)
	Voices(ctx context.Context, languageCode string) ([]string, error)
	Format() string
}

// NewSynthesizer selects the backend named by the configuration, failing
// fast when the selected provider's required settings are absent.
func NewSynthesizer(cfg config.TTSConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case config.TTSGoogleCloud:
		// Works with application default credentials when no path is set.
		return NewGoogleCloudSynth(cfg.GoogleCredentialsPath), nil
	case config.TTSAzure:
		if cfg.AzureSpeechKey == "" || cfg.AzureSpeechRegion == "" {
			return nil, fmt.Errorf("azure speech key and region are required when tts.provider=%s", config.TTSAzure)
		}
		return NewAzureSynth(cfg.AzureSpeechKey, cfg.AzureSpeechRegion), nil
	case config.TTSWhisperSpeech:
		if cfg.WhisperSpeechCommand == "" {
			return nil, fmt.Errorf("whisperspeech command is required when tts.provider=%s", config.TTSWhisperSpeech)
		}
		return NewWhisperSpeechSynth(cfg.WhisperSpeechCommand)
	case config.TTSGTTS:
		return NewGTTSSynth(cfg.GTTSCommand, cfg.GTTSRequestsPerMin), nil
	}
	return nil, fmt.Errorf("unsupported tts provider %q", cfg.Provider)
}
