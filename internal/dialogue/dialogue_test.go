package dialogue

import (
	"strings"
	"testing"
	"time"
)

func TestAddMessageAppendOnly(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	t.Cleanup(func() { now = time.Now })

	d := New("Au marché", "", LevelBeginner)
	if err := d.AddMessage(RoleUser, "Bonjour"); err != nil {
		t.Fatalf("add message: %v", err)
	}
	first := *d.UpdatedAt
	if err := d.AddMessage(RoleAssistant, "Salut"); err != nil {
		t.Fatalf("add message: %v", err)
	}
	if len(d.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(d.Messages))
	}
	if d.Messages[0].Content != "Bonjour" || d.Messages[1].Content != "Salut" {
		t.Fatalf("order not preserved: %+v", d.Messages)
	}
	if !d.UpdatedAt.After(first) {
		t.Fatalf("updated_at did not advance: %v -> %v", first, d.UpdatedAt)
	}
}

func TestAddMessageRejectsEmptyContent(t *testing.T) {
	d := New("Test", "", LevelBeginner)
	if err := d.AddMessage(RoleUser, "   "); err == nil {
		t.Fatal("expected error for empty content")
	}
	if len(d.Messages) != 0 {
		t.Fatalf("empty message was appended")
	}
	if d.UpdatedAt != nil {
		t.Fatal("updated_at mutated by rejected append")
	}
}

func TestMessagesByRole(t *testing.T) {
	d := New("Test", "", LevelIntermediate)
	for _, m := range []struct {
		role    Role
		content string
	}{
		{RoleUser, "un"},
		{RoleAssistant, "deux"},
		{RoleUser, "trois"},
	} {
		if err := d.AddMessage(m.role, m.content); err != nil {
			t.Fatalf("add message: %v", err)
		}
	}
	users := d.MessagesByRole(RoleUser)
	if len(users) != 2 || users[0].Content != "un" || users[1].Content != "trois" {
		t.Fatalf("unexpected user messages: %+v", users)
	}
}

func TestToText(t *testing.T) {
	d := New("Au café", "Commander un café", LevelBeginner)
	if err := d.AddMessage(RoleUser, "Bonjour"); err != nil {
		t.Fatalf("add message: %v", err)
	}
	if err := d.AddMessage(RoleAssistant, "Bonjour, que désirez-vous ?"); err != nil {
		t.Fatalf("add message: %v", err)
	}
	got := d.ToText()
	want := strings.Join([]string{
		"Title: Au café",
		"Context: Commander un café",
		"Level: beginner",
		"",
		"Utilisateur: Bonjour",
		"Assistant: Bonjour, que désirez-vous ?",
	}, "\n")
	if got != want {
		t.Fatalf("text render mismatch:\n%s\n---\n%s", got, want)
	}
}

func TestLevelValid(t *testing.T) {
	for _, l := range []Level{LevelBeginner, LevelIntermediate, LevelAdvanced} {
		if !l.Valid() {
			t.Fatalf("level %q should be valid", l)
		}
	}
	if Level("expert").Valid() {
		t.Fatal("unknown level accepted")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Assistant ")
	if err != nil || r != RoleAssistant {
		t.Fatalf("parse role: %v %v", r, err)
	}
	if _, err := ParseRole("narrator"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestStatistics(t *testing.T) {
	d := New("Test", "", LevelAdvanced)
	_ = d.AddMessage(RoleUser, "abcd")
	_ = d.AddMessage(RoleAssistant, "ab")
	s := d.Statistics()
	if s.TotalMessages != 2 || s.UserMessages != 1 || s.AssistantMessages != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.AvgMessageLength != 3 {
		t.Fatalf("expected avg 3, got %v", s.AvgMessageLength)
	}
}
