package stt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lingualabs/langtutor/internal/config"
)

const (
	defaultListenTimeout = 5 * time.Second
	defaultPhraseLimit   = 10 * time.Second
)

// Service is the voice input façade: calibrated microphone listening,
// file recognition, and the hardware self-test.
type Service struct {
	cfg      config.Config
	rec      Recognizer
	capturer Capturer
	logger   *slog.Logger
}

func NewService(cfg config.Config, rec Recognizer, capturer Capturer, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		rec:      rec,
		capturer: capturer,
		logger:   logger.With(slog.String("component", "voice-service")),
	}
}

// Listen records from the microphone and recognizes what was said.
// The timeout bounds how long the caller waits for speech to start;
// phraseLimit bounds the recording itself. A false result with a nil
// error means no speech was detected, which callers treat as "nothing
// said" rather than a failure.
func (s *Service) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, bool, error) {
	if timeout <= 0 {
		timeout = defaultListenTimeout
	}
	if phraseLimit <= 0 {
		phraseLimit = defaultPhraseLimit
	}

	threshold := s.calibrate(ctx)

	wavData, err := s.capturer.Capture(ctx, timeout+phraseLimit)
	if err != nil {
		return "", false, fmt.Errorf("record speech: %w", err)
	}

	samples, sampleRate, err := wavSamples(wavData)
	if err != nil {
		return "", false, fmt.Errorf("decode recording: %w", err)
	}

	onset, spoke := speechOnset(samples, sampleRate, threshold, timeout)
	if !spoke {
		s.logger.Debug("no speech detected within timeout",
			slog.Duration("timeout", timeout))
		return "", false, nil
	}

	// Drop the leading silence so the recognizer sees speech first.
	trimmed, err := encodeWAV(samples[onset:], sampleRate, s.cfg.STT.Channels)
	if err != nil {
		return "", false, fmt.Errorf("trim recording: %w", err)
	}
	return s.recognize(ctx, trimmed)
}

// RecognizeFile recognizes speech from a WAV file on disk.
func (s *Service) RecognizeFile(ctx context.Context, path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read audio file: %w", err)
	}
	if _, _, err := wavSamples(data); err != nil {
		return "", false, fmt.Errorf("unsupported audio file %s: %w", path, err)
	}
	return s.recognize(ctx, data)
}

func (s *Service) recognize(ctx context.Context, wavData []byte) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	text, ok, err := s.rec.Recognize(ctx, wavData, s.cfg.STT.Language)
	if err != nil {
		return "", false, fmt.Errorf("speech recognition: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	s.logger.Info("speech recognized", slog.Int("chars", len(text)))
	return text, true, nil
}

// calibrate measures ambient noise for the configured duration and derives
// the speech detection threshold. Calibration failures are logged and the
// default threshold is used.
func (s *Service) calibrate(ctx context.Context) float64 {
	duration := time.Duration(s.cfg.STT.CalibrationMS) * time.Millisecond
	if duration <= 0 {
		return speechThreshold(0)
	}
	wavData, err := s.capturer.Capture(ctx, duration)
	if err != nil {
		s.logger.Warn("microphone calibration failed", slog.String("error", err.Error()))
		return speechThreshold(0)
	}
	samples, _, err := wavSamples(wavData)
	if err != nil {
		s.logger.Warn("microphone calibration failed", slog.String("error", err.Error()))
		return speechThreshold(0)
	}
	return speechThreshold(rms(samples))
}

// SelfTest checks whether voice input can work on this machine.
func (s *Service) SelfTest(ctx context.Context) (SelfTestStatus, string) {
	devices, err := ListDevices(ctx, s.cfg.STT.ListDevicesCommand)
	return ClassifySelfTest(devices, err)
}

// Devices lists the system's audio capture devices.
func (s *Service) Devices(ctx context.Context) ([]Device, error) {
	return ListDevices(ctx, s.cfg.STT.ListDevicesCommand)
}
