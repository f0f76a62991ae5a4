package stt

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mattn/go-shellwords"

	"github.com/lingualabs/langtutor/internal/config"
)

// Capturer records audio from the default input device and returns a
// complete WAV payload.
type Capturer interface {
	Capture(ctx context.Context, duration time.Duration) ([]byte, error)
}

// execCapturer shells out to a recording command (arecord by default).
// Format flags for sample rate and channel count are appended so the
// recognizer always receives the configured layout.
type execCapturer struct {
	cmd        []string
	sampleRate int
	channels   int
	mu         sync.Mutex
}

// NewExecCapturer parses the configured capture command.
func NewExecCapturer(cfg config.STTConfig) (Capturer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.CaptureCommand)
	if err != nil {
		return nil, fmt.Errorf("parse capture command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("capture command empty")
	}
	return &execCapturer{cmd: args, sampleRate: cfg.SampleRate, channels: cfg.Channels}, nil
}

func (c *execCapturer) Capture(ctx context.Context, duration time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seconds := int(math.Ceil(duration.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	args := append([]string{}, c.cmd[1:]...)
	args = append(args,
		"-f", "S16_LE",
		"-r", strconv.Itoa(c.sampleRate),
		"-c", strconv.Itoa(c.channels),
		"-d", strconv.Itoa(seconds),
		"-")

	cmd := exec.CommandContext(ctx, c.cmd[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("audio capture failed: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("capture command produced no audio")
	}
	return stdout.Bytes(), nil
}

// wavSampleRate reads the sample rate from a WAV header without decoding
// the payload.
func wavSampleRate(data []byte) (int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return 0, fmt.Errorf("read wav header: %w", err)
	}
	if decoder.SampleRate == 0 {
		return 0, fmt.Errorf("not a valid wav file")
	}
	return int(decoder.SampleRate), nil
}

// wavSamples decodes a WAV payload into raw PCM samples.
func wavSamples(data []byte) ([]int, int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file")
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	return buf.Data, buf.Format.SampleRate, nil
}

// encodeWAV renders PCM samples back into a 16-bit WAV payload. The wav
// encoder needs a seekable target, so it goes through a temp file.
func encodeWAV(samples []int, sampleRate, channels int) ([]byte, error) {
	f, err := os.CreateTemp("", "langtutor_pcm_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp wav file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   samples,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return os.ReadFile(f.Name())
}

// rms computes the root mean square amplitude of a sample window.
func rms(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// rmsFloor is the minimum energy treated as speech regardless of how
// quiet the calibration pass measured the room.
const rmsFloor = 200.0

// speechThreshold derives the speech detection threshold from the ambient
// noise level measured during calibration.
func speechThreshold(ambient float64) float64 {
	return math.Max(ambient*2, rmsFloor)
}

// speechOnset scans the first maxWait of audio in 100ms windows and
// returns the sample offset of the first window whose energy crosses the
// threshold. False means no speech started within the wait.
func speechOnset(samples []int, sampleRate int, threshold float64, maxWait time.Duration) (int, bool) {
	window := sampleRate / 10
	if window <= 0 {
		return 0, false
	}
	limit := int(float64(sampleRate) * maxWait.Seconds())
	if limit > len(samples) {
		limit = len(samples)
	}
	for start := 0; start < limit; start += window {
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}
		if rms(samples[start:end]) >= threshold {
			return start, true
		}
	}
	return 0, false
}
