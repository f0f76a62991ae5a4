// Package runtime wires the configured providers into the interactive
// practice session and owns process lifecycle: telemetry, the health and
// metrics endpoint, and graceful shutdown.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/llm"
	"github.com/lingualabs/langtutor/internal/stt"
	"github.com/lingualabs/langtutor/internal/tts"
)

type Runtime struct {
	cfg            config.Config
	logger         *slog.Logger
	dialogues      *llm.Service
	audio          *tts.Service
	voice          *stt.Service
	input          io.Reader
	httpServer     *http.Server
	telemetryClose func(context.Context) error
	ready          atomic.Bool
	wg             sync.WaitGroup
}

// New builds every service from the configuration. Provider construction
// fails fast on missing credentials.
func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	gen, err := llm.NewGenerator(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	synth, err := tts.NewSynthesizer(cfg.TTS)
	if err != nil {
		return nil, fmt.Errorf("tts provider: %w", err)
	}
	audio, err := tts.NewService(cfg, synth, logger)
	if err != nil {
		return nil, err
	}
	rec, err := stt.NewRecognizer(cfg.STT)
	if err != nil {
		return nil, fmt.Errorf("stt provider: %w", err)
	}
	capturer, err := stt.NewExecCapturer(cfg.STT)
	if err != nil {
		return nil, fmt.Errorf("stt capture: %w", err)
	}

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		dialogues: llm.NewService(cfg, gen, logger),
		audio:     audio,
		voice:     stt.NewService(cfg, rec, capturer, logger),
		input:     os.Stdin,
	}, nil
}

// Start brings up telemetry and the health endpoint, then runs the
// interactive session until it exits or the context is cancelled.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	telemetryClose, metricHandler, err := setupTelemetry(r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.telemetryClose = telemetryClose

	metrics, err := newSessionMetrics()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)
	if metricHandler != nil {
		mux.Handle("/metrics", metricHandler)
	}

	r.httpServer = &http.Server{
		Addr:              r.cfg.Telemetry.PrometheusBind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	r.ready.Store(true)
	r.logger.Info("runtime started", slog.String("addr", r.cfg.Telemetry.PrometheusBind))

	session := newSession(r.cfg, r.dialogues, r.audio, r.voice, metrics, r.logger, r.input, os.Stdout)

	// Not tracked by the wait group: a read on stdin cannot be
	// interrupted, so on a signal the blocked goroutine is abandoned and
	// exits with the process.
	sessionDone := make(chan error, 1)
	go func() {
		sessionDone <- session.run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-sessionDone:
		if err != nil {
			r.logger.Error("session ended with error", slog.String("error", err.Error()))
		}
	}
	cancel()

	r.logger.Info("runtime stopping")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	r.wg.Wait()

	if r.telemetryClose != nil {
		if err := r.telemetryClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	if r.ready.Load() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
