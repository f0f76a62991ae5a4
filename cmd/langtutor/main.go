// Package main provides the langtutor command line entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingualabs/langtutor/internal/config"
	"github.com/lingualabs/langtutor/internal/llm"
	"github.com/lingualabs/langtutor/internal/runtime"
	"github.com/lingualabs/langtutor/internal/tts"
)

var version = "0.1.0-dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "langtutor",
	Short:         "French conversation practice with generated dialogues and speech",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive practice session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := newLogger(cfg.Telemetry.LogLevel)

		rt, err := runtime.New(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := rt.Start(ctx); err != nil {
			logger.Error("runtime exited with error", slog.String("error", err.Error()))
			time.Sleep(1 * time.Second)
			return err
		}
		logger.Info("shutdown complete")
		return nil
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a sample environment file with every recognized option",
	RunE: func(cmd *cobra.Command, _ []string) error {
		const path = ".env.sample"
		if err := config.WriteSampleEnv(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and verify provider credentials",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("configuration invalid: %w", err)
		}
		if _, err := llm.NewGenerator(cfg.LLM); err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		if _, err := tts.NewSynthesizer(cfg.TTS); err != nil {
			return fmt.Errorf("tts provider: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "configuration ok\n")
		fmt.Fprintf(out, "  llm provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(out, "  tts provider: %s\n", cfg.TTS.Provider)
		fmt.Fprintf(out, "  stt language: %s\n", cfg.STT.Language)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	rootCmd.AddCommand(runCmd, setupCmd, validateCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
