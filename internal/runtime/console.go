package runtime

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/dialogue"
	"github.com/lingualabs/langtutor/internal/fileio"
	"github.com/lingualabs/langtutor/internal/llm"
	"github.com/lingualabs/langtutor/internal/stt"
	"github.com/lingualabs/langtutor/internal/tts"
)

// session is the interactive practice loop. Input is read line by line;
// every provider call is dispatched to a goroutine and awaited, so the
// loop itself never blocks inside a network call without a join point.
type session struct {
	cfg       config.Config
	dialogues *llm.Service
	audio     *tts.Service
	voice     *stt.Service
	metrics   *sessionMetrics
	logger    *slog.Logger
	in        *bufio.Scanner
	out       io.Writer

	current *dialogue.Dialogue
	level   dialogue.Level
}

func newSession(cfg config.Config, dialogues *llm.Service, audio *tts.Service, voice *stt.Service, metrics *sessionMetrics, logger *slog.Logger, in io.Reader, out io.Writer) *session {
	return &session{
		cfg:       cfg,
		dialogues: dialogues,
		audio:     audio,
		voice:     voice,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "console")),
		in:        bufio.NewScanner(in),
		out:       out,
		level:     dialogue.LevelBeginner,
	}
}

// await runs fn off the console loop and blocks until it finishes. This is
// the session's single suspension point.
func await(fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	return <-done
}

func (s *session) run(ctx context.Context) error {
	s.printf("langtutor interactive session. Type 'help' for commands.\n")
	for {
		s.printf("> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(command) {
		case "quit", "exit":
			return nil
		case "help":
			s.printHelp()
		case "level":
			s.setLevel(rest)
		case "generate":
			s.generate(ctx, rest)
		case "continue", "c":
			s.continueDialogue(ctx, rest)
		case "listen":
			s.listen(ctx)
		case "ask":
			s.ask(ctx, rest)
		case "audio":
			s.synthesize(ctx)
		case "say":
			s.say(ctx, rest)
		case "transcribe":
			s.transcribe(ctx, rest)
		case "purge":
			s.purge()
		case "voices":
			s.voices(ctx)
		case "devices":
			s.devices(ctx)
		case "show":
			s.show()
		case "stats":
			s.stats()
		case "import":
			s.importDialogue(rest)
		case "export":
			s.export(rest)
		case "cleanup":
			s.cleanup()
		default:
			s.printf("unknown command %q, type 'help'\n", command)
		}
	}
}

func (s *session) printHelp() {
	s.printf(`commands:
  generate <topic>     generate a new practice dialogue
  continue <text>      reply to the tutor (alias: c)
  listen               reply by voice
  ask <question>       ask a free-form grammar question
  audio                synthesize audio for the current dialogue
  say <text>           synthesize one phrase to a temporary file
  transcribe <path>    recognize speech from a wav file
  purge                delete the current dialogue's audio files
  voices               list available voices
  devices              list audio capture devices
  level <l>            set difficulty (beginner/intermediate/advanced)
  show                 print the current dialogue
  stats                print dialogue statistics
  import <path>        import a dialogue (.txt .json .csv .md)
  export <json|txt>    export the current dialogue
  cleanup              enforce the audio retention cap
  quit                 exit
`)
}

func (s *session) setLevel(arg string) {
	l := dialogue.Level(strings.ToLower(arg))
	if !l.Valid() {
		s.printf("invalid level %q\n", arg)
		return
	}
	s.level = l
	s.printf("level set to %s\n", l)
}

func (s *session) generate(ctx context.Context, topic string) {
	if topic == "" {
		s.printf("usage: generate <topic>\n")
		return
	}
	var d *dialogue.Dialogue
	err := await(func() error {
		var err error
		d, err = s.dialogues.GenerateDialogue(ctx, topic, "", s.level, s.dialogues.DefaultExchanges())
		return err
	})
	if err != nil {
		s.printf("generation failed: %v\n", err)
		return
	}
	s.current = d
	s.metrics.dialoguesGenerated.Add(ctx, 1)
	s.printf("%s\n", d.ToText())
}

func (s *session) continueDialogue(ctx context.Context, input string) {
	if s.current == nil {
		s.printf("no dialogue yet, use 'generate' or 'import' first\n")
		return
	}
	if input == "" {
		s.printf("usage: continue <text>\n")
		return
	}
	var reply string
	err := await(func() error {
		var err error
		reply, err = s.dialogues.ContinueDialogue(ctx, s.current, input)
		return err
	})
	if err != nil {
		s.printf("continuation failed: %v\n", err)
		return
	}
	s.printf("%s: %s\n", dialogue.SpeakerLabel(dialogue.RoleAssistant), reply)
}

func (s *session) listen(ctx context.Context) {
	if s.current == nil {
		s.printf("no dialogue yet, use 'generate' or 'import' first\n")
		return
	}
	s.printf("listening...\n")
	var text string
	var ok bool
	err := await(func() error {
		var err error
		text, ok, err = s.voice.Listen(ctx, 0, 0)
		return err
	})
	if err != nil {
		s.printf("voice input failed: %v\n", err)
		return
	}
	if !ok {
		s.printf("no speech detected\n")
		return
	}
	s.metrics.transcriptions.Add(ctx, 1)
	s.printf("%s: %s\n", dialogue.SpeakerLabel(dialogue.RoleUser), text)
	s.continueDialogue(ctx, text)
}

func (s *session) ask(ctx context.Context, question string) {
	if question == "" {
		s.printf("usage: ask <question>\n")
		return
	}
	var answer string
	err := await(func() error {
		var err error
		answer, err = s.dialogues.AskQuestion(ctx, question)
		return err
	})
	if err != nil {
		s.printf("question failed: %v\n", err)
		return
	}
	s.printf("%s\n", answer)
}

func (s *session) synthesize(ctx context.Context) {
	if s.current == nil {
		s.printf("no dialogue yet\n")
		return
	}
	var n int
	err := await(func() error {
		var err error
		n, err = s.audio.SynthesizeDialogue(ctx, s.current)
		return err
	})
	if err != nil {
		s.printf("synthesis failed after %d message(s): %v\n", n, err)
		return
	}
	s.metrics.messagesSynthesized.Add(ctx, int64(n))
	s.printf("synthesized %d message(s)\n", n)
	if deleted, err := s.audio.CleanupOldFiles(); err == nil && deleted > 0 {
		s.printf("retention cleanup removed %d old file(s)\n", deleted)
	}
}

func (s *session) say(ctx context.Context, text string) {
	if text == "" {
		s.printf("usage: say <text>\n")
		return
	}
	var path string
	err := await(func() error {
		var err error
		path, err = s.audio.SynthesizeTemp(ctx, text, s.cfg.TTS.DefaultVoice)
		return err
	})
	if err != nil {
		s.printf("synthesis failed: %v\n", err)
		return
	}
	s.printf("audio written to %s\n", path)
}

func (s *session) transcribe(ctx context.Context, path string) {
	if path == "" {
		s.printf("usage: transcribe <path>\n")
		return
	}
	var text string
	var ok bool
	err := await(func() error {
		var err error
		text, ok, err = s.voice.RecognizeFile(ctx, path)
		return err
	})
	if err != nil {
		s.printf("transcription failed: %v\n", err)
		return
	}
	if !ok {
		s.printf("no intelligible speech in %s\n", path)
		return
	}
	s.metrics.transcriptions.Add(ctx, 1)
	s.printf("%s\n", text)
}

func (s *session) purge() {
	if s.current == nil {
		s.printf("no dialogue yet\n")
		return
	}
	s.audio.CleanupDialogueAudio(s.current)
	s.printf("dialogue audio removed\n")
}

func (s *session) voices(ctx context.Context) {
	var voices []string
	err := await(func() error {
		var err error
		voices, err = s.audio.Voices(ctx, "")
		return err
	})
	if err != nil {
		s.printf("voice listing failed: %v\n", err)
		return
	}
	for _, v := range voices {
		s.printf("  %s\n", v)
	}
}

func (s *session) devices(ctx context.Context) {
	status, msg := s.voice.SelfTest(ctx)
	s.printf("%s\n", msg)
	if status != stt.SelfTestOK {
		return
	}
	devices, err := s.voice.Devices(ctx)
	if err != nil {
		return
	}
	for _, d := range devices {
		s.printf("  card %d: %s\n", d.Card, d.Name)
	}
}

func (s *session) show() {
	if s.current == nil {
		s.printf("no dialogue yet\n")
		return
	}
	s.printf("%s\n", s.current.ToText())
}

func (s *session) stats() {
	if s.current == nil {
		s.printf("no dialogue yet\n")
		return
	}
	st := s.current.Statistics()
	s.printf("messages: %d (user %d, tutor %d), avg length %s chars\n",
		st.TotalMessages, st.UserMessages, st.AssistantMessages,
		strconv.FormatFloat(st.AvgMessageLength, 'f', 1, 64))
	files, err := s.audio.ListFiles()
	if err == nil {
		s.printf("audio library: %d file(s)\n", len(files))
	}
}

func (s *session) importDialogue(path string) {
	if path == "" {
		s.printf("usage: import <path>\n")
		return
	}
	if !fileio.Supported(path) {
		s.printf("unsupported file type, expected one of %s\n", strings.Join(fileio.SupportedExtensions, " "))
		return
	}
	d, err := fileio.ImportDialogue(path)
	if err != nil {
		s.printf("import failed: %v\n", err)
		return
	}
	s.current = d
	s.printf("imported %q with %d message(s)\n", d.Title, len(d.Messages))
}

func (s *session) export(format string) {
	if s.current == nil {
		s.printf("no dialogue yet\n")
		return
	}
	var path string
	var err error
	switch strings.ToLower(format) {
	case "json":
		path, err = fileio.ExportJSON(s.current, s.cfg.ExportDir, "")
	case "txt", "text":
		path, err = fileio.ExportText(s.current, s.cfg.ExportDir, "")
	default:
		s.printf("usage: export <json|txt>\n")
		return
	}
	if err != nil {
		s.printf("export failed: %v\n", err)
		return
	}
	s.printf("exported to %s\n", path)
}

func (s *session) cleanup() {
	deleted, err := s.audio.CleanupOldFiles()
	if err != nil {
		s.printf("cleanup failed: %v\n", err)
		return
	}
	s.printf("removed %d file(s)\n", deleted)
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
