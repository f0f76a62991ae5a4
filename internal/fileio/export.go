package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

// dialogueRecord is the structured JSON document. ImportJSON reads the
// same shape ExportJSON writes, so a structured export round-trips.
type dialogueRecord struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Context   *string         `json:"context"`
	Level     string          `json:"level"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at"`
	Messages  []messageRecord `json:"messages"`
}

type messageRecord struct {
	Role          string     `json:"role"`
	Content       string     `json:"content"`
	Timestamp     *time.Time `json:"timestamp"`
	AudioFilePath *string    `json:"audio_file_path"`
}

func toRecord(d *dialogue.Dialogue) dialogueRecord {
	rec := dialogueRecord{
		ID:        d.ID,
		Title:     d.Title,
		Level:     string(d.Level),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Messages:  make([]messageRecord, 0, len(d.Messages)),
	}
	if d.Context != "" {
		rec.Context = &d.Context
	}
	for i := range d.Messages {
		m := &d.Messages[i]
		mr := messageRecord{Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp}
		if m.AudioFilePath != "" {
			mr.AudioFilePath = &m.AudioFilePath
		}
		rec.Messages = append(rec.Messages, mr)
	}
	return rec
}

// MarshalDialogue renders the structured JSON document.
func MarshalDialogue(d *dialogue.Dialogue) ([]byte, error) {
	return json.MarshalIndent(toRecord(d), "", "  ")
}

// ExportJSON writes the dialogue as structured JSON under dir. An empty
// filename derives one from the dialogue ID. Returns the written path.
func ExportJSON(d *dialogue.Dialogue, dir, filename string) (string, error) {
	data, err := MarshalDialogue(d)
	if err != nil {
		return "", fmt.Errorf("encode dialogue: %w", err)
	}
	if filename == "" {
		filename = fmt.Sprintf("dialogue_%s.json", exportStem(d))
	}
	return writeExport(dir, filename, data)
}

// ExportText writes the flat speaker-labeled rendering under dir.
func ExportText(d *dialogue.Dialogue, dir, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("dialogue_%s.txt", exportStem(d))
	}
	return writeExport(dir, filename, []byte(d.ToText()+"\n"))
}

func exportStem(d *dialogue.Dialogue) string {
	if d.ID != "" {
		return d.ID
	}
	return "export"
}

func writeExport(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
