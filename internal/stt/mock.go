package stt

import (
	"context"
	"time"
)

type mockRecognizer struct {
	text  string
	ok    bool
	err   error
	calls int
}

// NewMockRecognizer returns a Recognizer with a fixed outcome.
func NewMockRecognizer(text string, ok bool, err error) *mockRecognizer {
	return &mockRecognizer{text: text, ok: ok, err: err}
}

func (m *mockRecognizer) Recognize(_ context.Context, _ []byte, _ string) (string, bool, error) {
	m.calls++
	return m.text, m.ok, m.err
}

func (m *mockRecognizer) Calls() int { return m.calls }

type mockCapturer struct {
	data []byte
	err  error
}

// NewMockCapturer returns a Capturer replaying a fixed WAV payload.
func NewMockCapturer(data []byte, err error) Capturer {
	return &mockCapturer{data: data, err: err}
}

func (m *mockCapturer) Capture(_ context.Context, _ time.Duration) ([]byte, error) {
	return m.data, m.err
}
