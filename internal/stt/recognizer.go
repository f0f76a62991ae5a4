package stt

import (
	"context"

	"github.com/lingualabs/langtutor/internal/config"
)

// Recognizer abstracts speech recognition backends. The boolean result is
// false when the audio contained no intelligible speech, which is an
// ordinary outcome rather than an error.
type Recognizer interface {
	Recognize(ctx context.Context, wavData []byte, language string) (string, bool, error)
}

// NewRecognizer selects the recognition backend for the configuration.
func NewRecognizer(cfg config.STTConfig) (Recognizer, error) {
	return newGoogleRecognizer(cfg), nil
}
