package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/go-audio/wav"
	"github.com/mattn/go-shellwords"
)

// whisperSpeechSynth shells out to an open-weight model runner. The
// command receives a JSON request on stdin and must write a complete WAV
// file to stdout.
type whisperSpeechSynth struct {
	cmd []string
	mu  sync.Mutex
}

type whisperSpeechRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// NewWhisperSpeechSynth parses the configured synthesis command.
func NewWhisperSpeechSynth(command string) (Synthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse whisperspeech command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("whisperspeech command empty")
	}
	return &whisperSpeechSynth{cmd: args}, nil
}

func (w *whisperSpeechSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	input, err := json.Marshal(whisperSpeechRequest{
		Text:     req.Text,
		Voice:    req.Voice,
		Language: req.LanguageCode,
	})
	if err != nil {
		return nil, err
	}

	base := w.cmd[0]
	args := append([]string{}, w.cmd[1:]...)
	cmd := exec.CommandContext(ctx, base, args...)
	cmd.Stdin = bytes.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("whisperspeech synthesis failed: %w: %s", err, stderr.String())
	}

	decoder := wav.NewDecoder(bytes.NewReader(output))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("whisperspeech command did not produce a valid wav file")
	}
	return output, nil
}

func (w *whisperSpeechSynth) Voices(_ context.Context, _ string) ([]string, error) {
	// The model runner carries one voice per model reference.
	return []string{"default"}, nil
}

func (w *whisperSpeechSynth) Format() string { return "wav" }
