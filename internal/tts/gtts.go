package tts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// gttsMaxTextLen mirrors the limit the translate endpoint enforces.
const gttsMaxTextLen = 5000

// gttsSynth is the free fallback: it drives gtts-cli, which hits the
// Google Translate TTS endpoint. Requests are throttled to avoid being
// blocked.
type gttsSynth struct {
	command string
	limiter *rate.Limiter
}

// NewGTTSSynth returns the gtts-cli backed Synthesizer.
func NewGTTSSynth(command string, requestsPerMinute int) Synthesizer {
	if command == "" {
		command = "gtts-cli"
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 50
	}
	return &gttsSynth{
		command: command,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (g *gttsSynth) Synthesize(ctx context.Context, req SynthRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}
	if n := utf8.RuneCountInString(req.Text); n > gttsMaxTextLen {
		return nil, fmt.Errorf("text too long: %d characters (max %d)", n, gttsMaxTextLen)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	args := []string{req.Text, "-l", gttsLang(req.LanguageCode), "-o", "-"}
	cmd := exec.CommandContext(ctx, g.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("gtts synthesis failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("gtts produced no audio")
	}
	return stdout.Bytes(), nil
}

func (g *gttsSynth) Voices(_ context.Context, languageCode string) ([]string, error) {
	// The translate endpoint exposes one voice per language.
	return []string{gttsLang(languageCode)}, nil
}

func (g *gttsSynth) Format() string { return "mp3" }

// gttsLang reduces a BCP-47 tag to the bare language gtts-cli expects.
func gttsLang(code string) string {
	if code == "" {
		return "fr"
	}
	lang, _, _ := strings.Cut(code, "-")
	return strings.ToLower(lang)
}
