package runtime

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/llm"
	"github.com/lingualabs/langtutor/internal/stt"
	"github.com/lingualabs/langtutor/internal/tts"
)

func newTestSession(t *testing.T, input string, responses ...string) (*session, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.ExportDir = t.TempDir()
	cfg.TTS.OutputDir = t.TempDir()
	cfg.TTS.DefaultVoice = ""

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	audio, err := tts.NewService(cfg, tts.NewMockSynth("mp3"), logger)
	require.NoError(t, err)

	metrics, err := newSessionMetrics()
	require.NoError(t, err)

	var out bytes.Buffer
	s := newSession(cfg,
		llm.NewService(cfg, llm.NewMockGenerator(responses...), logger),
		audio,
		stt.NewService(cfg, stt.NewMockRecognizer("", false, nil), stt.NewMockCapturer(nil, nil), logger),
		metrics, logger,
		strings.NewReader(input), &out)
	return s, &out
}

func TestSessionGenerateShowQuit(t *testing.T) {
	s, out := newTestSession(t,
		"generate Au café\nshow\nstats\nquit\n",
		"Personne A: Bonjour!\nPersonne B: Bonjour, bienvenue au café.")

	require.NoError(t, s.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Utilisateur: Bonjour!")
	assert.Contains(t, text, "Assistant: Bonjour, bienvenue au café.")
	assert.Contains(t, text, "messages: 2 (user 1, tutor 1)")
}

func TestSessionContinueGrowsDialogue(t *testing.T) {
	s, out := newTestSession(t,
		"generate Au café\ncontinue Je voudrais un thé\nstats\nquit\n",
		"Personne A: Bonjour!\nPersonne B: Bonjour, bienvenue au café.",
		"Bien sûr, un thé.")

	require.NoError(t, s.run(context.Background()))

	require.NotNil(t, s.current)
	require.Len(t, s.current.Messages, 4)
	assert.Equal(t, "Je voudrais un thé", s.current.Messages[2].Content)
	assert.Equal(t, "Bien sûr, un thé.", s.current.Messages[3].Content)
	assert.Contains(t, out.String(), "Assistant: Bien sûr, un thé.")
	assert.Contains(t, out.String(), "messages: 4 (user 2, tutor 2)")
}

func TestSessionContinueRequiresDialogue(t *testing.T) {
	s, out := newTestSession(t, "continue Bonjour\nquit\n")

	require.NoError(t, s.run(context.Background()))
	assert.Contains(t, out.String(), "no dialogue yet")
}

func TestSessionGenerateAudioExport(t *testing.T) {
	s, out := newTestSession(t,
		"generate Au café\naudio\nexport json\nquit\n",
		"Personne A: Bonjour!\nPersonne B: Salut.")

	require.NoError(t, s.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "synthesized 2 message(s)")
	assert.Contains(t, text, "exported to ")

	matches, err := filepath.Glob(filepath.Join(s.cfg.ExportDir, "dialogue_*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSessionSayAndPurge(t *testing.T) {
	s, out := newTestSession(t,
		"generate Au café\naudio\npurge\nsay Bonjour\nquit\n",
		"Personne A: Bonjour!\nPersonne B: Salut.")

	require.NoError(t, s.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "dialogue audio removed")
	assert.Contains(t, text, "audio written to ")
}

func TestSessionLevelCommand(t *testing.T) {
	s, out := newTestSession(t, "level advanced\nlevel expert\nquit\n")

	require.NoError(t, s.run(context.Background()))
	assert.Contains(t, out.String(), "level set to advanced")
	assert.Contains(t, out.String(), `invalid level "expert"`)
}

func TestSessionUnknownCommand(t *testing.T) {
	s, out := newTestSession(t, "dance\nquit\n")

	require.NoError(t, s.run(context.Background()))
	assert.Contains(t, out.String(), "unknown command")
}
