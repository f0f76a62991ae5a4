package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/dialogue"
)

// audioExtensions gates which files the library operations touch.
var audioExtensions = map[string]bool{".mp3": true, ".wav": true, ".m4a": true}

// AudioFile describes one entry of the generated-audio library.
type AudioFile struct {
	Name       string
	Path       string
	SizeBytes  int64
	ModifiedAt time.Time
}

// Service is the audio façade: it owns the configured Synthesizer, the
// output directory, and the file library maintenance.
type Service struct {
	cfg    config.Config
	synth  Synthesizer
	logger *slog.Logger
}

// NewService creates the audio service and its output directory.
func NewService(cfg config.Config, synth Synthesizer, logger *slog.Logger) (*Service, error) {
	if err := os.MkdirAll(cfg.TTS.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio output dir: %w", err)
	}
	return &Service{
		cfg:    cfg,
		synth:  synth,
		logger: logger.With(slog.String("component", "audio-service")),
	}, nil
}

// voiceForMessage picks a voice so the two dialogue speakers sound
// different: the configured voice wins, otherwise the role name is passed
// through for the backend to map onto a concrete voice.
func (s *Service) voiceForMessage(role dialogue.Role) string {
	if s.cfg.TTS.DefaultVoice != "" {
		return s.cfg.TTS.DefaultVoice
	}
	return string(role)
}

// SynthesizeToFile synthesizes text and writes it under the output
// directory. When filename is empty one is derived from the text plus a
// unique suffix, so concurrent calls never collide on a path.
func (s *Service) SynthesizeToFile(ctx context.Context, text, voice, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	data, err := s.synth.Synthesize(ctx, SynthRequest{
		Text:         text,
		Voice:        voice,
		LanguageCode: s.cfg.TTS.LanguageCode,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize speech: %w", err)
	}

	if filename == "" {
		filename = fmt.Sprintf("%s-%s.%s", safeStem(text), uuid.NewString()[:8], s.synth.Format())
	}
	path := filepath.Join(s.cfg.TTS.OutputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	s.logger.Info("audio written", slog.String("path", path), slog.Int("bytes", len(data)))
	return path, nil
}

// SynthesizeDialogue generates audio for every message that does not
// already carry an audio reference and records the file path on the
// message. Repeated calls are idempotent: messages with audio are skipped.
// Returns the number of messages synthesized.
func (s *Service) SynthesizeDialogue(ctx context.Context, d *dialogue.Dialogue) (int, error) {
	synthesized := 0
	for i := range d.Messages {
		m := &d.Messages[i]
		if m.AudioFilePath != "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		filename := fmt.Sprintf("dialogue_%s_message_%d.%s", d.ID, i, s.synth.Format())
		path, err := s.SynthesizeToFile(ctx, m.Content, s.voiceForMessage(m.Role), filename)
		if err != nil {
			return synthesized, fmt.Errorf("dialogue audio for message %d: %w", i, err)
		}
		m.AudioFilePath = path
		synthesized++
	}
	return synthesized, nil
}

// SynthesizeTemp writes audio to a temporary file for ephemeral playback.
// The caller owns the file.
func (s *Service) SynthesizeTemp(ctx context.Context, text, voice string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	data, err := s.synth.Synthesize(ctx, SynthRequest{
		Text:         text,
		Voice:        voice,
		LanguageCode: s.cfg.TTS.LanguageCode,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize speech: %w", err)
	}
	f, err := os.CreateTemp("", "langtutor_*."+s.synth.Format())
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	return f.Name(), nil
}

// Voices lists the available voices for a language, defaulting to the
// configured language code.
func (s *Service) Voices(ctx context.Context, languageCode string) ([]string, error) {
	if languageCode == "" {
		languageCode = s.cfg.TTS.LanguageCode
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	voices, err := s.synth.Voices(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return voices, nil
}

// ListFiles returns the audio library sorted newest first.
func (s *Service) ListFiles() ([]AudioFile, error) {
	entries, err := os.ReadDir(s.cfg.TTS.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list audio files: %w", err)
	}
	var files []AudioFile
	for _, e := range entries {
		if e.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, AudioFile{
			Name:       e.Name(),
			Path:       filepath.Join(s.cfg.TTS.OutputDir, e.Name()),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModifiedAt.After(files[j].ModifiedAt) })
	return files, nil
}

// DeleteFile removes one audio file, reporting whether it existed.
func (s *Service) DeleteFile(path string) bool {
	if err := os.Remove(path); err != nil {
		return false
	}
	return true
}

// CleanupOldFiles enforces the retention cap: when the library exceeds the
// configured maximum it deletes the oldest files first and returns how
// many were removed. Filesystem errors on individual deletes are ignored.
func (s *Service) CleanupOldFiles() (int, error) {
	files, err := s.ListFiles()
	if err != nil {
		return 0, err
	}
	cap_ := s.cfg.TTS.RetentionMaxFiles
	if len(files) <= cap_ {
		return 0, nil
	}
	deleted := 0
	for _, f := range files[cap_:] {
		if s.DeleteFile(f.Path) {
			deleted++
		}
	}
	if deleted > 0 {
		s.logger.Info("audio retention cleanup", slog.Int("deleted", deleted), slog.Int("cap", cap_))
	}
	return deleted, nil
}

// CleanupDialogueAudio deletes every audio file referenced by a dialogue
// and clears the references. Best-effort: filesystem errors are ignored.
func (s *Service) CleanupDialogueAudio(d *dialogue.Dialogue) {
	for i := range d.Messages {
		m := &d.Messages[i]
		if m.AudioFilePath == "" {
			continue
		}
		_ = os.Remove(m.AudioFilePath)
		m.AudioFilePath = ""
	}
}

// safeStem keeps the first 50 alphanumeric-ish characters of the text for
// use in a filename.
func safeStem(text string) string {
	runes := []rune(text)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	var b strings.Builder
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	stem := strings.TrimSpace(b.String())
	if stem == "" {
		stem = "audio"
	}
	return stem
}
