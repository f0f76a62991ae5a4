package dialogue

import (
	"regexp"
	"strings"
)

// Turn is one (role, content) pair recovered from unstructured text.
type Turn struct {
	Role    Role
	Content string
}

// Speaker keywords used to classify a label before falling back to
// alternation. Matching is substring-based on the lowercased label.
var (
	userKeywords      = []string{"user", "utilisateur", "client", "étudiant", "student"}
	assistantKeywords = []string{"assistant", "tuteur", "prof", "teacher", "tutor"}
)

var (
	mdEmphasisRe = regexp.MustCompile(`\*{1,2}(.+?)\*{1,2}`)
	mdCodeRe     = regexp.MustCompile("`(.+?)`")
	mdLinkRe     = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
	mdSpeakerRe  = regexp.MustCompile(`^\*{1,2}(.+?):\*{1,2}\s*(.+)$`)
)

// StripMarkdown removes emphasis, inline code, and link decorations while
// keeping the text itself.
func StripMarkdown(s string) string {
	s = mdEmphasisRe.ReplaceAllString(s, "$1")
	s = mdCodeRe.ReplaceAllString(s, "$1")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	return s
}

// ParseGenerated splits provider-generated dialogue text into turns using
// the "Speaker: message" convention. A label containing a literal "A" maps
// to the learner and everything else to the tutor, which is how the prompt
// labels the two speakers (Personne A / Personne B). A name like "Alex"
// would therefore land on the learner side; this is documented behavior.
// Lines without a colon are discarded. Best-effort: never fails.
func ParseGenerated(text string) []Turn {
	var turns []Turn
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		speaker, content, _ := strings.Cut(line, ":")
		content = strings.TrimSpace(StripMarkdown(content))
		if content == "" {
			continue
		}
		role := RoleAssistant
		if strings.Contains(speaker, "A") {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Content: content})
	}
	return turns
}

// ParseTranscript splits free-form dialogue text into turns using the richer
// keyword heuristic. Labeled lines are classified against the user/assistant
// keyword lists; unknown labels and bare lines alternate from the previous
// turn, starting with the learner when there is no prior turn. Nothing is
// discarded and nothing fails.
func ParseTranscript(text string) []Turn {
	var turns []Turn
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		speaker, content, labeled := splitSpeakerLine(line)
		if !labeled {
			turns = append(turns, Turn{Role: alternate(turns), Content: StripMarkdown(line)})
			continue
		}
		content = strings.TrimSpace(StripMarkdown(content))
		if content == "" {
			continue
		}
		turns = append(turns, Turn{Role: classifySpeaker(speaker, turns), Content: content})
	}
	return turns
}

// splitSpeakerLine handles both "Speaker: message" and the markdown form
// "**Speaker:** message".
func splitSpeakerLine(line string) (speaker, content string, ok bool) {
	if m := mdSpeakerRe.FindStringSubmatch(line); m != nil {
		return m[1], m[2], true
	}
	if strings.Contains(line, ":") {
		speaker, content, _ = strings.Cut(line, ":")
		return speaker, content, true
	}
	return "", "", false
}

// ClassifySpeaker maps a raw speaker label to a role using the keyword
// lists, falling back to alternation against the previous turn.
func ClassifySpeaker(label string, previous Role, hasPrevious bool) Role {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, kw := range userKeywords {
		if strings.Contains(label, kw) {
			return RoleUser
		}
	}
	for _, kw := range assistantKeywords {
		if strings.Contains(label, kw) {
			return RoleAssistant
		}
	}
	if !hasPrevious {
		return RoleUser
	}
	if previous == RoleAssistant {
		return RoleUser
	}
	return RoleAssistant
}

func classifySpeaker(label string, turns []Turn) Role {
	if len(turns) == 0 {
		return ClassifySpeaker(label, RoleAssistant, false)
	}
	return ClassifySpeaker(label, turns[len(turns)-1].Role, true)
}

func alternate(turns []Turn) Role {
	if len(turns) == 0 || turns[len(turns)-1].Role == RoleAssistant {
		return RoleUser
	}
	return RoleAssistant
}

// AppendTurns adds parsed turns to a dialogue, skipping any turn whose
// content stripped to nothing.
func AppendTurns(d *Dialogue, turns []Turn) {
	for _, t := range turns {
		_ = d.AddMessage(t.Role, t.Content)
	}
}
