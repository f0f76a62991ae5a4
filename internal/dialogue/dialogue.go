// Package dialogue holds the conversation model shared by every service:
// ordered messages with closed roles, plus the parser that recovers turns
// from free-form provider text.
package dialogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// now is swapped out in tests to freeze timestamps.
var now = time.Now

// Role identifies a dialogue participant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole maps a serialized role string back to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	case RoleSystem:
		return RoleSystem, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Level is the difficulty of a dialogue.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Valid reports whether the level is one of the closed set.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Message is one attributed utterance.
type Message struct {
	Role          Role       `json:"role"`
	Content       string     `json:"content"`
	Timestamp     *time.Time `json:"timestamp"`
	AudioFilePath string     `json:"audio_file_path,omitempty"`
}

// Dialogue is an ordered conversation. Messages are append-only and never
// reordered; UpdatedAt is refreshed only when a message is appended.
type Dialogue struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title"`
	Context   string     `json:"context,omitempty"`
	Level     Level      `json:"level"`
	Messages  []Message  `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// New creates an empty dialogue with a fresh ID.
func New(title, context string, level Level) *Dialogue {
	return &Dialogue{
		ID:        uuid.NewString(),
		Title:     title,
		Context:   context,
		Level:     level,
		CreatedAt: now(),
	}
}

// AddMessage appends a message and refreshes UpdatedAt. Empty content is
// rejected; everything else is the caller's responsibility.
func (d *Dialogue) AddMessage(role Role, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content must not be empty")
	}
	ts := now()
	d.Messages = append(d.Messages, Message{Role: role, Content: content, Timestamp: &ts})
	updated := now()
	d.UpdatedAt = &updated
	return nil
}

// MessagesByRole returns the messages spoken by one role, in order.
func (d *Dialogue) MessagesByRole(role Role) []Message {
	var out []Message
	for _, m := range d.Messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// SpeakerLabel renders the display name used in text exports and LLM
// context windows.
func SpeakerLabel(role Role) string {
	if role == RoleUser {
		return "Utilisateur"
	}
	return "Assistant"
}

// ToText renders the dialogue as a flat speaker-labeled block: a Title line,
// an optional Context line, a Level line, a blank line, then one line per
// message.
func (d *Dialogue) ToText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	if d.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", d.Context)
	}
	fmt.Fprintf(&b, "Level: %s\n\n", d.Level)
	for _, m := range d.Messages {
		fmt.Fprintf(&b, "%s: %s\n", SpeakerLabel(m.Role), m.Content)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Stats summarizes a dialogue for display.
type Stats struct {
	TotalMessages     int
	UserMessages      int
	AssistantMessages int
	AvgMessageLength  float64
}

// Statistics computes message counts and average content length.
func (d *Dialogue) Statistics() Stats {
	s := Stats{TotalMessages: len(d.Messages)}
	total := 0
	for _, m := range d.Messages {
		total += len(m.Content)
		switch m.Role {
		case RoleUser:
			s.UserMessages++
		case RoleAssistant:
			s.AssistantMessages++
		}
	}
	if s.TotalMessages > 0 {
		s.AvgMessageLength = float64(total) / float64(s.TotalMessages)
	}
	return s
}
