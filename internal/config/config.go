// Package config loads the immutable application configuration: defaults,
// then an optional YAML file, then LANG_TUTOR_-prefixed environment
// variables. The resulting value is validated once and passed to every
// service; it is never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every recognized environment variable.
const EnvPrefix = "LANG_TUTOR_"

// LLM provider identifiers.
const (
	LLMOpenAI = "openai"
	LLMGemini = "gemini"
)

// TTS provider identifiers.
const (
	TTSGoogleCloud   = "google_cloud"
	TTSAzure         = "azure"
	TTSWhisperSpeech = "whisperspeech"
	TTSGTTS          = "gtts"
)

type LLMConfig struct {
	Provider     string `yaml:"provider" env:"PROVIDER"`
	OpenAIAPIKey string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel  string `yaml:"openai_model" env:"OPENAI_MODEL"`
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel  string `yaml:"gemini_model" env:"GEMINI_MODEL"`
}

type TTSConfig struct {
	Provider              string `yaml:"provider" env:"PROVIDER"`
	GoogleCredentialsPath string `yaml:"google_credentials_path" env:"GOOGLE_CREDENTIALS_PATH"`
	AzureSpeechKey        string `yaml:"azure_speech_key" env:"AZURE_SPEECH_KEY"`
	AzureSpeechRegion     string `yaml:"azure_speech_region" env:"AZURE_SPEECH_REGION"`
	WhisperSpeechCommand  string `yaml:"whisperspeech_command" env:"WHISPERSPEECH_COMMAND"`
	GTTSCommand           string `yaml:"gtts_command" env:"GTTS_COMMAND"`
	GTTSRequestsPerMin    int    `yaml:"gtts_requests_per_min" env:"GTTS_REQUESTS_PER_MIN"`
	DefaultVoice          string `yaml:"default_voice" env:"DEFAULT_VOICE"`
	DefaultVoiceGender    string `yaml:"default_voice_gender" env:"DEFAULT_VOICE_GENDER"`
	LanguageCode          string `yaml:"language_code" env:"LANGUAGE_CODE"`
	OutputFormat          string `yaml:"output_format" env:"OUTPUT_FORMAT"`
	OutputDir             string `yaml:"output_dir" env:"OUTPUT_DIR"`
	RetentionMaxFiles     int    `yaml:"retention_max_files" env:"RETENTION_MAX_FILES"`
}

type STTConfig struct {
	Language              string `yaml:"language" env:"LANGUAGE"`
	GoogleCredentialsPath string `yaml:"google_credentials_path" env:"GOOGLE_CREDENTIALS_PATH"`
	CaptureCommand        string `yaml:"capture_command" env:"CAPTURE_COMMAND"`
	ListDevicesCommand    string `yaml:"list_devices_command" env:"LIST_DEVICES_COMMAND"`
	SampleRate            int    `yaml:"sample_rate" env:"SAMPLE_RATE"`
	Channels              int    `yaml:"channels" env:"CHANNELS"`
	CalibrationMS         int    `yaml:"calibration_ms" env:"CALIBRATION_MS"`
}

type Limits struct {
	MaxDialogueLength     int `yaml:"max_dialogue_length" env:"MAX_DIALOGUE_LENGTH"`
	RequestTimeoutSec     int `yaml:"request_timeout_sec" env:"REQUEST_TIMEOUT"`
	MaxConcurrentRequests int `yaml:"max_concurrent_requests" env:"MAX_CONCURRENT_REQUESTS"`
}

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	PrometheusBind string `yaml:"prometheus_bind" env:"PROMETHEUS_BIND"`
}

type Config struct {
	AppName   string          `yaml:"app_name" env:"APP_NAME"`
	ExportDir string          `yaml:"export_dir" env:"EXPORT_DIR"`
	LLM       LLMConfig       `yaml:"llm" envPrefix:"LLM_"`
	TTS       TTSConfig       `yaml:"tts" envPrefix:"TTS_"`
	STT       STTConfig       `yaml:"stt" envPrefix:"STT_"`
	Limits    Limits          `yaml:"limits"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// RequestTimeout returns the per-call provider timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Limits.RequestTimeoutSec) * time.Second
}

func Default() Config {
	return Config{
		AppName:   "langtutor",
		ExportDir: "output",
		LLM: LLMConfig{
			Provider:    LLMGemini,
			OpenAIModel: "gpt-4",
			GeminiModel: "gemini-1.5-flash",
		},
		TTS: TTSConfig{
			Provider:           TTSGTTS,
			GTTSCommand:        "gtts-cli",
			GTTSRequestsPerMin: 50,
			DefaultVoiceGender: "female",
			LanguageCode:       "fr-FR",
			OutputFormat:       "mp3",
			OutputDir:          "audio_output",
			RetentionMaxFiles:  100,
		},
		STT: STTConfig{
			Language:           "fr-FR",
			CaptureCommand:     "arecord -q -t wav",
			ListDevicesCommand: "arecord -l",
			SampleRate:         16000,
			Channels:           1,
			CalibrationMS:      1000,
		},
		Limits: Limits{
			MaxDialogueLength:     10,
			RequestTimeoutSec:     30,
			MaxConcurrentRequests: 5,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			PrometheusBind: "127.0.0.1:9091",
		},
	}
}

// Load builds the configuration snapshot. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.LLM.Provider {
	case LLMOpenAI, LLMGemini:
	default:
		return fmt.Errorf("llm.provider must be one of %s|%s, got %q", LLMOpenAI, LLMGemini, cfg.LLM.Provider)
	}
	switch cfg.TTS.Provider {
	case TTSGoogleCloud, TTSAzure, TTSWhisperSpeech, TTSGTTS:
	default:
		return fmt.Errorf("tts.provider must be one of %s|%s|%s|%s, got %q",
			TTSGoogleCloud, TTSAzure, TTSWhisperSpeech, TTSGTTS, cfg.TTS.Provider)
	}
	switch cfg.TTS.OutputFormat {
	case "mp3", "wav":
	default:
		return errors.New("tts.output_format must be mp3 or wav")
	}
	if cfg.TTS.OutputDir == "" {
		return errors.New("tts.output_dir must not be empty")
	}
	if cfg.TTS.RetentionMaxFiles < 0 {
		return errors.New("tts.retention_max_files must be >= 0")
	}
	if cfg.ExportDir == "" {
		return errors.New("export_dir must not be empty")
	}
	if cfg.Limits.MaxDialogueLength <= 0 {
		return errors.New("max_dialogue_length must be positive")
	}
	if cfg.Limits.RequestTimeoutSec <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if cfg.Limits.MaxConcurrentRequests <= 0 {
		return errors.New("max_concurrent_requests must be positive")
	}
	if cfg.STT.SampleRate <= 0 {
		return errors.New("stt.sample_rate must be positive")
	}
	if cfg.STT.Channels <= 0 {
		return errors.New("stt.channels must be positive")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	return nil
}
