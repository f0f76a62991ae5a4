package fileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

func TestJSONRoundTrip(t *testing.T) {
	d := dialogue.New("Au restaurant", "Commander un repas", dialogue.LevelIntermediate)
	if err := d.AddMessage(dialogue.RoleUser, "Bonjour, une table pour deux."); err != nil {
		t.Fatalf("add message: %v", err)
	}
	if err := d.AddMessage(dialogue.RoleAssistant, "Bien sûr, suivez-moi."); err != nil {
		t.Fatalf("add message: %v", err)
	}
	d.Messages[1].AudioFilePath = "/tmp/reply.mp3"

	data, err := MarshalDialogue(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ImportJSON(data, "ignored.json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if got.ID != d.ID || got.Title != d.Title || got.Context != d.Context || got.Level != d.Level {
		t.Fatalf("header mismatch: got %+v", got)
	}
	if len(got.Messages) != len(d.Messages) {
		t.Fatalf("expected %d messages, got %d", len(d.Messages), len(got.Messages))
	}
	for i := range d.Messages {
		if got.Messages[i].Role != d.Messages[i].Role {
			t.Errorf("message %d role: got %q want %q", i, got.Messages[i].Role, d.Messages[i].Role)
		}
		if got.Messages[i].Content != d.Messages[i].Content {
			t.Errorf("message %d content: got %q want %q", i, got.Messages[i].Content, d.Messages[i].Content)
		}
	}
	if got.Messages[1].AudioFilePath != "/tmp/reply.mp3" {
		t.Errorf("audio path lost: %q", got.Messages[1].AudioFilePath)
	}
}

func TestImportJSONBareList(t *testing.T) {
	data := []byte(`["Bonjour", "Salut, comment ça va?", "Très bien, merci."]`)
	d, err := ImportJSON(data, "list.json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(d.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(d.Messages))
	}
	wantRoles := []dialogue.Role{dialogue.RoleUser, dialogue.RoleAssistant, dialogue.RoleUser}
	for i, want := range wantRoles {
		if d.Messages[i].Role != want {
			t.Errorf("message %d role: got %q want %q", i, d.Messages[i].Role, want)
		}
	}
}

func TestImportCSVRoleContentColumns(t *testing.T) {
	data := []byte("role,content\nuser,Bonjour\nassistant,Salut\n")
	d, err := ImportCSV(data, "lesson.csv")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(d.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(d.Messages))
	}
	if d.Messages[0].Role != dialogue.RoleUser || d.Messages[0].Content != "Bonjour" {
		t.Errorf("first message: %+v", d.Messages[0])
	}
	if d.Messages[1].Role != dialogue.RoleAssistant || d.Messages[1].Content != "Salut" {
		t.Errorf("second message: %+v", d.Messages[1])
	}
}

func TestImportCSVGenericColumns(t *testing.T) {
	data := []byte("speaker,message\nMarie,Bonjour\nTuteur,Salut\nMarie,Ça va?\n")
	d, err := ImportCSV(data, "lesson.csv")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	wantRoles := []dialogue.Role{dialogue.RoleUser, dialogue.RoleAssistant, dialogue.RoleUser}
	if len(d.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(d.Messages))
	}
	for i, want := range wantRoles {
		if d.Messages[i].Role != want {
			t.Errorf("message %d role: got %q want %q", i, d.Messages[i].Role, want)
		}
	}
}

func TestImportCSVRejectsBadRole(t *testing.T) {
	data := []byte("role,content\nnarrator,Il était une fois\n")
	if _, err := ImportCSV(data, "lesson.csv"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestImportText(t *testing.T) {
	content := "Étudiant: Bonjour!\nTuteur: Salut, ça va?\nOui, très bien."
	d, err := ImportText(content, "lesson.txt")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(d.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(d.Messages))
	}
	// The bare line alternates off the tutor turn before it.
	if d.Messages[2].Role != dialogue.RoleUser || d.Messages[2].Content != "Oui, très bien." {
		t.Errorf("continuation line: %+v", d.Messages[2])
	}
}

func TestImportMarkdown(t *testing.T) {
	content := `# Au marché

**Niveau:** intermediate
**Contexte:** Acheter des légumes

**Étudiant:** Bonjour, je voudrais des *tomates*.
**Tuteur:** Bien sûr, combien en voulez-vous?
Une remarque sans deux-points.
`
	d, err := ImportMarkdown(content, "fallback.md")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if d.Title != "Au marché" {
		t.Errorf("title: got %q", d.Title)
	}
	if d.Level != dialogue.LevelIntermediate {
		t.Errorf("level: got %q", d.Level)
	}
	if d.Context != "Acheter des légumes" {
		t.Errorf("context: got %q", d.Context)
	}
	if len(d.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(d.Messages))
	}
	if d.Messages[0].Role != dialogue.RoleUser || d.Messages[0].Content != "Bonjour, je voudrais des tomates." {
		t.Errorf("first message: %+v", d.Messages[0])
	}
	if d.Messages[1].Role != dialogue.RoleAssistant {
		t.Errorf("second message role: %q", d.Messages[1].Role)
	}
}

func TestImportDialogueExtensionGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.pdf")
	if err := os.WriteFile(path, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ImportDialogue(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if Supported(path) {
		t.Error("pdf reported as supported")
	}
	if !Supported("lesson.JSON") {
		t.Error("extension check should be case-insensitive")
	}
}

func TestImportDialogueDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.txt")
	if err := os.WriteFile(path, []byte("Utilisateur: Bonjour"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := ImportDialogue(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if d.Title != "lesson.txt" {
		t.Errorf("title: got %q", d.Title)
	}
	if len(d.Messages) != 1 || d.Messages[0].Role != dialogue.RoleUser {
		t.Errorf("messages: %+v", d.Messages)
	}
}

func TestExportText(t *testing.T) {
	d := dialogue.New("Salutations", "", dialogue.LevelBeginner)
	if err := d.AddMessage(dialogue.RoleUser, "Bonjour"); err != nil {
		t.Fatalf("add message: %v", err)
	}

	dir := t.TempDir()
	path, err := ExportText(d, dir, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "Title: Salutations\n") {
		t.Errorf("unexpected export:\n%s", text)
	}
	if !strings.Contains(text, "Utilisateur: Bonjour") {
		t.Errorf("missing message line:\n%s", text)
	}
}

func TestExportJSONDerivedFilename(t *testing.T) {
	d := dialogue.New("Test", "", dialogue.LevelBeginner)
	dir := t.TempDir()
	path, err := ExportJSON(d, dir, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "dialogue_"+d.ID+".json" {
		t.Errorf("unexpected filename %q", filepath.Base(path))
	}
}
