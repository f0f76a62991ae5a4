package dialogue

import "testing"

func TestParseGeneratedPersonneAB(t *testing.T) {
	turns := ParseGenerated("Personne A: Bonjour\nPersonne B: Salut")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "Bonjour" {
		t.Fatalf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "Salut" {
		t.Fatalf("unexpected second turn: %+v", turns[1])
	}
}

func TestParseGeneratedSkipsUnlabeledLines(t *testing.T) {
	turns := ParseGenerated("Voici un dialogue.\n\nPersonne A: Bonjour !")
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Content != "Bonjour !" {
		t.Fatalf("punctuation lost: %q", turns[0].Content)
	}
}

func TestParseGeneratedStripsMarkdown(t *testing.T) {
	turns := ParseGenerated("Personne A: **Bonjour** `mon ami`")
	if len(turns) != 1 || turns[0].Content != "Bonjour mon ami" {
		t.Fatalf("markdown not stripped: %+v", turns)
	}
}

func TestParseTranscriptKeywords(t *testing.T) {
	text := "Étudiant: Bonjour\nTuteur: Bonjour, comment allez-vous ?"
	turns := ParseTranscript(text)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Fatalf("keyword classification failed: %+v", turns)
	}
}

func TestParseTranscriptAlternationFallback(t *testing.T) {
	// Unknown labels alternate starting with the learner.
	turns := ParseTranscript("Marie: Salut\nJean: Salut Marie\nMarie: Ça va ?")
	want := []Role{RoleUser, RoleAssistant, RoleUser}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, r := range want {
		if turns[i].Role != r {
			t.Fatalf("turn %d: expected %s, got %s", i, r, turns[i].Role)
		}
	}
}

func TestParseTranscriptKeepsBareLines(t *testing.T) {
	turns := ParseTranscript("Utilisateur: Bonjour\nEt ensuite une suite sans étiquette")
	if len(turns) != 2 {
		t.Fatalf("bare line dropped: %+v", turns)
	}
	if turns[1].Role != RoleAssistant {
		t.Fatalf("continuation should alternate to assistant, got %s", turns[1].Role)
	}
}

func TestParseTranscriptMarkdownSpeakers(t *testing.T) {
	turns := ParseTranscript("**Student:** Hello [there](http://x)\n*Teacher:* `Hi`")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "Hello there" {
		t.Fatalf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "Hi" {
		t.Fatalf("unexpected second turn: %+v", turns[1])
	}
}

func TestParseTranscriptEmptyInput(t *testing.T) {
	if turns := ParseTranscript("   \n\n  "); len(turns) != 0 {
		t.Fatalf("expected no turns, got %+v", turns)
	}
}

func TestStripMarkdown(t *testing.T) {
	got := StripMarkdown("**gras** *italique* `code` [lien](https://a.b)")
	want := "gras italique code lien"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
