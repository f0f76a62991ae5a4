// Package fileio converts dialogues to and from their on-disk
// representations: plain text, structured JSON, CSV, and Markdown.
package fileio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lingualabs/langtutor/internal/dialogue"
)

// SupportedExtensions lists the file types ImportDialogue accepts.
var SupportedExtensions = []string{".txt", ".json", ".csv", ".md"}

// Supported reports whether the file's extension is importable.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImportDialogue reads a dialogue from disk, dispatching on the file
// extension.
func ImportDialogue(path string) (*dialogue.Dialogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return ImportText(string(data), name)
	case ".json":
		return ImportJSON(data, name)
	case ".csv":
		return ImportCSV(data, name)
	case ".md":
		return ImportMarkdown(string(data), name)
	default:
		return nil, fmt.Errorf("unsupported file format %q", filepath.Ext(path))
	}
}

// ImportText parses a plain transcript. Speaker labels are classified by
// keyword with alternation fallback; bare lines are kept as continuation
// utterances.
func ImportText(content, title string) (*dialogue.Dialogue, error) {
	d := dialogue.New(title, "", dialogue.LevelBeginner)
	dialogue.AppendTurns(d, dialogue.ParseTranscript(content))
	return d, nil
}

// ImportJSON accepts either the structured export document or a bare list
// of utterances with roles alternating by position, learner first.
func ImportJSON(data []byte, title string) (*dialogue.Dialogue, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode json list: %w", err)
		}
		d := dialogue.New(title, "", dialogue.LevelBeginner)
		for i, content := range items {
			role := dialogue.RoleUser
			if i%2 == 1 {
				role = dialogue.RoleAssistant
			}
			if err := d.AddMessage(role, content); err != nil {
				return nil, fmt.Errorf("message %d: %w", i, err)
			}
		}
		return d, nil
	}

	var doc dialogueRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json dialogue: %w", err)
	}
	if doc.Title == "" {
		doc.Title = "Imported Dialogue"
	}
	level := dialogue.Level(doc.Level)
	if !level.Valid() {
		level = dialogue.LevelBeginner
	}

	d := &dialogue.Dialogue{
		ID:        doc.ID,
		Title:     doc.Title,
		Level:     level,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if doc.Context != nil {
		d.Context = *doc.Context
	}
	for i, m := range doc.Messages {
		role, err := dialogue.ParseRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msg := dialogue.Message{Role: role, Content: m.Content, Timestamp: m.Timestamp}
		if m.AudioFilePath != nil {
			msg.AudioFilePath = *m.AudioFilePath
		}
		d.Messages = append(d.Messages, msg)
	}
	return d, nil
}

// ImportCSV accepts either explicit role/content columns or a generic
// two-column (speaker, message) layout. The first row is always a header.
func ImportCSV(data []byte, title string) (*dialogue.Dialogue, error) {
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("csv must have at least 2 columns")
	}

	roleCol, contentCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "role":
			roleCol = i
		case "content":
			contentCol = i
		}
	}

	d := dialogue.New(title, "", dialogue.LevelBeginner)
	for i, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		var role dialogue.Role
		var content string
		if roleCol >= 0 && contentCol >= 0 {
			role, err = dialogue.ParseRole(row[roleCol])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			content = row[contentCol]
		} else {
			role = classifyWithPrevious(row[0], d)
			content = row[1]
		}
		if err := d.AddMessage(role, content); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return d, nil
}

var (
	mdTitleRe   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mdLevelRe   = regexp.MustCompile(`(?i)\*\*(?:Level|Niveau):\*\*\s*(\w+)`)
	mdContextRe = regexp.MustCompile(`(?is)\*\*(?:Context|Contexte):\*\*\s*(.+?)(?:\n\n|\n---|\z)`)
	mdSpeakerRe = regexp.MustCompile(`^\*{1,2}(.+?):\*{1,2}\s*(.+)$`)
)

// ImportMarkdown parses a markdown transcript: the title comes from the
// leading heading, level and context from bold-labeled metadata lines, and
// messages from "Speaker: text" lines in plain or bold form. Lines without
// a speaker label are skipped.
func ImportMarkdown(content, fallbackTitle string) (*dialogue.Dialogue, error) {
	title := fallbackTitle
	if m := mdTitleRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}
	level := dialogue.LevelBeginner
	if m := mdLevelRe.FindStringSubmatch(content); m != nil {
		if l := dialogue.Level(strings.ToLower(m[1])); l.Valid() {
			level = l
		}
	}
	context := ""
	if m := mdContextRe.FindStringSubmatch(content); m != nil {
		context = strings.TrimSpace(m[1])
	}

	d := dialogue.New(title, context, level)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(line, "**") &&
			(strings.Contains(lower, "level:") || strings.Contains(lower, "niveau:") ||
				strings.Contains(lower, "context:") || strings.Contains(lower, "contexte:")) {
			continue
		}

		var speaker, message string
		if m := mdSpeakerRe.FindStringSubmatch(line); m != nil {
			speaker, message = m[1], m[2]
		} else if strings.Contains(line, ":") {
			speaker, message, _ = strings.Cut(line, ":")
		} else {
			continue
		}
		message = strings.TrimSpace(dialogue.StripMarkdown(message))
		if message == "" {
			continue
		}
		if err := d.AddMessage(classifyWithPrevious(speaker, d), message); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func classifyWithPrevious(label string, d *dialogue.Dialogue) dialogue.Role {
	if len(d.Messages) == 0 {
		return dialogue.ClassifySpeaker(label, dialogue.RoleAssistant, false)
	}
	return dialogue.ClassifySpeaker(label, d.Messages[len(d.Messages)-1].Role, true)
}
