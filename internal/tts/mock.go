package tts

import (
	"context"
	"fmt"
)

type mockSynth struct {
	format string
	calls  int
}

// NewMockSynth returns a Synthesizer producing deterministic fake payloads.
func NewMockSynth(format string) *mockSynth {
	if format == "" {
		format = "mp3"
	}
	return &mockSynth{format: format}
}

func (m *mockSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}
	m.calls++
	return []byte(fmt.Sprintf("audio[%s|%s]", req.Voice, req.Text)), nil
}

func (m *mockSynth) Voices(_ context.Context, languageCode string) ([]string, error) {
	return []string{languageCode + "-Mock-A", languageCode + "-Mock-B"}, nil
}

func (m *mockSynth) Format() string { return m.format }

// Calls reports how many synthesis requests reached the backend.
func (m *mockSynth) Calls() int { return m.calls }
