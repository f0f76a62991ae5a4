package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/dialogue"
)

// contextWindow bounds how much history is replayed when continuing a
// dialogue. Fixed trade of context completeness for cost and latency.
const contextWindow = 6

const (
	generateMaxTokens = 1000
	continueMaxTokens = 200
)

// Service is the dialogue façade: it validates inputs, owns the configured
// Generator, and turns raw model text into structured dialogues.
type Service struct {
	cfg    config.Config
	gen    Generator
	logger *slog.Logger
}

// NewService wires a Service around an already-selected Generator.
func NewService(cfg config.Config, gen Generator, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		gen:    gen,
		logger: logger.With(slog.String("component", "dialogue-service")),
	}
}

// DefaultExchanges is the exchange count used when the caller does not pick
// one.
func (s *Service) DefaultExchanges() int {
	if s.cfg.Limits.MaxDialogueLength < 8 {
		return s.cfg.Limits.MaxDialogueLength
	}
	return 8
}

// ValidateParameters checks a generation request against the closed level
// set and the configured length limit.
func (s *Service) ValidateParameters(topic string, level dialogue.Level, numExchanges int) error {
	var errs []error
	if strings.TrimSpace(topic) == "" {
		errs = append(errs, errors.New("topic must not be empty"))
	}
	if !level.Valid() {
		errs = append(errs, fmt.Errorf("level must be one of %s|%s|%s",
			dialogue.LevelBeginner, dialogue.LevelIntermediate, dialogue.LevelAdvanced))
	}
	if numExchanges < 1 || numExchanges > s.cfg.Limits.MaxDialogueLength {
		errs = append(errs, fmt.Errorf("number of exchanges must be between 1 and %d", s.cfg.Limits.MaxDialogueLength))
	}
	return errors.Join(errs...)
}

// GenerateDialogue asks the backend for a scripted dialogue and parses it
// into structured turns. Parsing is best-effort: a model that drifts from
// the requested format yields whatever the line heuristic recovers.
func (s *Service) GenerateDialogue(ctx context.Context, topic, contextText string, level dialogue.Level, numExchanges int) (*dialogue.Dialogue, error) {
	if err := s.ValidateParameters(topic, level, numExchanges); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	prompt := generationPrompt(topic, level, numExchanges)
	text, err := s.gen.Complete(ctx, systemPrompt(level, contextText), []ChatMessage{{Role: dialogue.RoleUser, Content: prompt}}, generateMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate dialogue: %w", err)
	}

	d := dialogue.New(topic, contextText, level)
	turns := dialogue.ParseGenerated(text)
	dialogue.AppendTurns(d, turns)
	s.logger.Info("dialogue generated",
		slog.String("topic", topic),
		slog.String("level", string(level)),
		slog.Int("messages", len(d.Messages)))
	return d, nil
}

// ContinueDialogue sends the user's input with a window of the most recent
// history and returns the tutor's reply text. On success both the input and
// the reply are appended to the dialogue, so the window advances on the
// next call.
func (s *Service) ContinueDialogue(ctx context.Context, d *dialogue.Dialogue, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", errors.New("user input must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	msgs := make([]ChatMessage, 0, contextWindow+1)
	history := d.Messages
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}
	for _, m := range history {
		msgs = append(msgs, ChatMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, ChatMessage{Role: dialogue.RoleUser, Content: userInput})

	reply, err := s.gen.Complete(ctx, systemPrompt(d.Level, d.Context), msgs, continueMaxTokens)
	if err != nil {
		return "", fmt.Errorf("continue dialogue: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errors.New("empty response from provider")
	}
	if err := d.AddMessage(dialogue.RoleUser, userInput); err != nil {
		return "", err
	}
	if err := d.AddMessage(dialogue.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// AskQuestion is a free-form pass-through for grammar questions.
func (s *Service) AskQuestion(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("question must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	answer, err := s.gen.Complete(ctx, "", []ChatMessage{{Role: dialogue.RoleUser, Content: grammarPrompt(question)}}, generateMaxTokens)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
