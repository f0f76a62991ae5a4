package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/dialogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	calls     int
	system    string
	msgs      []ChatMessage
	maxTokens int
	response  string
}

func (g *recordingGenerator) Complete(_ context.Context, system string, msgs []ChatMessage, maxTokens int) (string, error) {
	g.calls++
	g.system = system
	g.msgs = msgs
	g.maxTokens = maxTokens
	return g.response, nil
}

func newTestService(gen Generator) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(config.Default(), gen, logger)
}

func TestGenerateDialogueParsesTurns(t *testing.T) {
	gen := &recordingGenerator{response: "Personne A: Bonjour\nPersonne B: Salut"}
	svc := newTestService(gen)

	d, err := svc.GenerateDialogue(context.Background(), "Au marché", "", dialogue.LevelBeginner, 2)
	require.NoError(t, err)
	require.Len(t, d.Messages, 2)
	assert.Equal(t, dialogue.RoleUser, d.Messages[0].Role)
	assert.Equal(t, "Bonjour", d.Messages[0].Content)
	assert.Equal(t, dialogue.RoleAssistant, d.Messages[1].Role)
	assert.Equal(t, "Salut", d.Messages[1].Content)
	assert.Equal(t, "Au marché", d.Title)
	assert.Equal(t, dialogue.LevelBeginner, d.Level)
}

func TestGenerateDialogueValidation(t *testing.T) {
	gen := &recordingGenerator{response: "Personne A: Bonjour"}
	svc := newTestService(gen)

	cases := []struct {
		name  string
		topic string
		level dialogue.Level
		n     int
	}{
		{"zero exchanges", "Topic", dialogue.LevelBeginner, 0},
		{"too many exchanges", "Topic", dialogue.LevelBeginner, 11},
		{"empty topic", "  ", dialogue.LevelBeginner, 3},
		{"bad level", "Topic", dialogue.Level("expert"), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GenerateDialogue(context.Background(), tc.topic, "", tc.level, tc.n)
			require.Error(t, err)
		})
	}
	assert.Zero(t, gen.calls, "validation failures must not reach the provider")
}

func TestContinueDialogueWindowsHistory(t *testing.T) {
	gen := &recordingGenerator{response: " D'accord. "}
	svc := newTestService(gen)

	d := dialogue.New("Topic", "Un café", dialogue.LevelIntermediate)
	for i := 0; i < 10; i++ {
		role := dialogue.RoleUser
		if i%2 == 1 {
			role = dialogue.RoleAssistant
		}
		require.NoError(t, d.AddMessage(role, fmt.Sprintf("message %d", i)))
	}

	reply, err := svc.ContinueDialogue(context.Background(), d, "Et ensuite ?")
	require.NoError(t, err)
	assert.Equal(t, "D'accord.", reply, "reply must be trimmed")

	// Last 6 history messages plus the new input.
	require.Len(t, gen.msgs, 7)
	assert.Equal(t, "message 4", gen.msgs[0].Content)
	assert.Equal(t, "Et ensuite ?", gen.msgs[6].Content)
	assert.Contains(t, gen.system, "Un café", "system prompt carries the dialogue context")
	assert.Equal(t, continueMaxTokens, gen.maxTokens)
}

func TestContinueDialogueAppendsExchange(t *testing.T) {
	gen := &recordingGenerator{response: "Très bien."}
	svc := newTestService(gen)

	d := dialogue.New("Topic", "", dialogue.LevelBeginner)
	require.NoError(t, d.AddMessage(dialogue.RoleUser, "Bonjour"))
	require.NoError(t, d.AddMessage(dialogue.RoleAssistant, "Bonjour, ça va?"))

	_, err := svc.ContinueDialogue(context.Background(), d, "Oui, et toi?")
	require.NoError(t, err)

	require.Len(t, d.Messages, 4)
	assert.Equal(t, dialogue.RoleUser, d.Messages[2].Role)
	assert.Equal(t, "Oui, et toi?", d.Messages[2].Content)
	assert.Equal(t, dialogue.RoleAssistant, d.Messages[3].Role)
	assert.Equal(t, "Très bien.", d.Messages[3].Content)

	// The next window is built from the grown history.
	gen.response = "Moi aussi."
	_, err = svc.ContinueDialogue(context.Background(), d, "Tu fais quoi?")
	require.NoError(t, err)
	require.Len(t, gen.msgs, 5)
	assert.Equal(t, "Oui, et toi?", gen.msgs[2].Content)
	assert.Equal(t, "Très bien.", gen.msgs[3].Content)
	assert.Equal(t, "Tu fais quoi?", gen.msgs[4].Content)
	assert.Len(t, d.Messages, 6)
}

func TestContinueDialogueRejectsEmptyInput(t *testing.T) {
	gen := &recordingGenerator{}
	svc := newTestService(gen)
	d := dialogue.New("Topic", "", dialogue.LevelBeginner)
	_, err := svc.ContinueDialogue(context.Background(), d, "   ")
	require.Error(t, err)
	assert.Zero(t, gen.calls)
}

func TestAskQuestion(t *testing.T) {
	gen := &recordingGenerator{response: "Use « du » before masculine nouns."}
	svc := newTestService(gen)
	answer, err := svc.AskQuestion(context.Background(), "du ou de la ?")
	require.NoError(t, err)
	assert.Contains(t, answer, "masculine")
	assert.Contains(t, gen.msgs[0].Content, "du ou de la ?")
}

func TestNewGeneratorFailsFastWithoutCredential(t *testing.T) {
	_, err := NewGenerator(config.LLMConfig{Provider: config.LLMOpenAI})
	require.Error(t, err)
	_, err = NewGenerator(config.LLMConfig{Provider: config.LLMGemini})
	require.Error(t, err)
	_, err = NewGenerator(config.LLMConfig{Provider: config.LLMOpenAI, OpenAIAPIKey: "sk-x", OpenAIModel: "gpt-4"})
	require.NoError(t, err)
}

func TestMockGeneratorReplays(t *testing.T) {
	gen := NewMockGenerator("un", "deux")
	for _, want := range []string{"un", "deux", "deux"} {
		got, err := gen.Complete(context.Background(), "", nil, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
