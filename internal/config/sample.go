package config

import (
	"fmt"
	"os"
)

// sampleEnv lists every recognized environment variable with a one-line
// comment. Kept in sync with the struct tags by the test in this package.
const sampleEnv = `# langtutor configuration

# LLM provider selection
LANG_TUTOR_LLM_PROVIDER=gemini                 # openai | gemini
LANG_TUTOR_LLM_OPENAI_API_KEY=                 # required when provider=openai
LANG_TUTOR_LLM_OPENAI_MODEL=gpt-4              # OpenAI chat model
LANG_TUTOR_LLM_GEMINI_API_KEY=                 # required when provider=gemini
LANG_TUTOR_LLM_GEMINI_MODEL=gemini-1.5-flash   # Gemini model

# TTS provider selection
LANG_TUTOR_TTS_PROVIDER=gtts                   # google_cloud | azure | whisperspeech | gtts
LANG_TUTOR_TTS_GOOGLE_CREDENTIALS_PATH=        # service account JSON (google_cloud)
LANG_TUTOR_TTS_AZURE_SPEECH_KEY=               # required when provider=azure
LANG_TUTOR_TTS_AZURE_SPEECH_REGION=            # required when provider=azure
LANG_TUTOR_TTS_WHISPERSPEECH_COMMAND=          # synth command (whisperspeech), reads JSON on stdin
LANG_TUTOR_TTS_GTTS_COMMAND=gtts-cli           # gtts-cli binary
LANG_TUTOR_TTS_GTTS_REQUESTS_PER_MIN=50        # throttle for the free endpoint
LANG_TUTOR_TTS_DEFAULT_VOICE=                  # provider voice name, empty = provider default
LANG_TUTOR_TTS_DEFAULT_VOICE_GENDER=female     # preferred voice gender
LANG_TUTOR_TTS_LANGUAGE_CODE=fr-FR             # synthesis language
LANG_TUTOR_TTS_OUTPUT_FORMAT=mp3               # mp3 | wav (whisperspeech always produces wav)
LANG_TUTOR_TTS_OUTPUT_DIR=audio_output         # generated audio directory
LANG_TUTOR_TTS_RETENTION_MAX_FILES=100         # keep at most N generated files

# STT settings
LANG_TUTOR_STT_LANGUAGE=fr-FR                  # recognition language
LANG_TUTOR_STT_GOOGLE_CREDENTIALS_PATH=        # service account JSON for recognition
LANG_TUTOR_STT_CAPTURE_COMMAND=arecord -q -t wav   # microphone capture command
LANG_TUTOR_STT_LIST_DEVICES_COMMAND=arecord -l # input device enumeration command
LANG_TUTOR_STT_SAMPLE_RATE=16000               # capture sample rate
LANG_TUTOR_STT_CHANNELS=1                      # capture channels
LANG_TUTOR_STT_CALIBRATION_MS=1000             # ambient noise calibration window

# General settings
LANG_TUTOR_APP_NAME=langtutor                  # service name in telemetry
LANG_TUTOR_EXPORT_DIR=output                   # dialogue export directory
LANG_TUTOR_MAX_DIALOGUE_LENGTH=10              # max exchanges per generated dialogue
LANG_TUTOR_REQUEST_TIMEOUT=30                  # provider request timeout (seconds)
LANG_TUTOR_MAX_CONCURRENT_REQUESTS=5           # max in-flight provider requests

# Telemetry
LANG_TUTOR_TELEMETRY_LOG_LEVEL=info            # debug | info | warn | error
LANG_TUTOR_TELEMETRY_PROMETHEUS_BIND=127.0.0.1:9091  # /metrics and /healthz listener
`

// WriteSampleEnv writes the annotated template with every recognized key.
func WriteSampleEnv(path string) error {
	if err := os.WriteFile(path, []byte(sampleEnv), 0o644); err != nil {
		return fmt.Errorf("write sample env file: %w", err)
	}
	return nil
}
