package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hotclip/internal/domain"
)

// Config stores the immutable runtime configuration. It is resolved once at
// startup and passed by reference into every component constructor.
type Config struct {
	Provider   ProviderConfig
	Audio      AudioConfig
	Activation ActivationConfig
	Clipboard  ClipboardConfig
	Pipeline   PipelineConfig
	Memory     MemoryConfig
	Features   FeatureConfig
	Rules      RulesConfig
	Notify     NotifyConfig
}

type ProviderConfig struct {
	// Reasoner selects the classification backend: "groq" or "gemini".
	Reasoner string
	// Transcriber selects the speech-to-text backend: "groq" or "deepgram".
	Transcriber string

	GroqAPIKey       string
	GroqAPIBaseURL   string
	GroqModel        string
	GroqWhisperModel string

	GeminiAPIKey string
	GeminiModel  string

	DeepgramAPIKey     string
	DeepgramAPIBaseURL string
	DeepgramModel      string
	DeepgramLanguage   string
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	FrameDuration   time.Duration
}

type ActivationConfig struct {
	Mode       domain.ActivationMode
	Wakeword   string
	StopPhrase string
	// KeyMonitorCommand and KeyCode drive the push-to-talk key monitor.
	KeyMonitorCommand string
	KeyCode           string
}

type ClipboardConfig struct {
	PollInterval time.Duration
	PreviewChars int
}

type PipelineConfig struct {
	MinUtterance       time.Duration
	TranscribeTimeout  time.Duration
	ReasonTimeout      time.Duration
	ExecuteTimeout     time.Duration
	TransportRetryWait time.Duration
}

type MemoryConfig struct {
	Enabled bool
	BaseDir string
}

type FeatureConfig struct {
	ScreenshotToCode bool
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type NotifyConfig struct {
	Title   string
	Command string
}

// Load resolves configuration from environment variables and defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := Config{
		Provider: ProviderConfig{
			Reasoner:           envOrDefault("HOTCLIP_PROVIDER", "groq"),
			Transcriber:        envOrDefault("HOTCLIP_TRANSCRIBER", "groq"),
			GroqAPIKey:         strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
			GroqAPIBaseURL:     envOrDefault("GROQ_API_BASE", "https://api.groq.com/openai/v1"),
			GroqModel:          envOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile"),
			GroqWhisperModel:   envOrDefault("GROQ_WHISPER_MODEL", "whisper-large-v3-turbo"),
			GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			GeminiModel:        envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			DeepgramAPIKey:     strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			DeepgramAPIBaseURL: envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			DeepgramModel:      envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			DeepgramLanguage:   strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("HOTCLIP_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("HOTCLIP_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("HOTCLIP_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("HOTCLIP_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("HOTCLIP_CHANNELS", 1),
			FrameDuration:   envOrDefaultMillis("HOTCLIP_FRAME_MS", 30),
		},
		Activation: ActivationConfig{
			Mode:              domain.ActivationMode(envOrDefault("HOTCLIP_ACTIVATION", string(domain.ModeWakeword))),
			Wakeword:          strings.ToLower(envOrDefault("HOTCLIP_WAKEWORD", "jarvis")),
			StopPhrase:        strings.ToLower(envOrDefault("HOTCLIP_STOP_PHRASE", "stop")),
			KeyMonitorCommand: envOrDefault("HOTCLIP_KEY_MONITOR_COMMAND", "xinput"),
			KeyCode:           envOrDefault("HOTCLIP_KEY_CODE", "135"),
		},
		Clipboard: ClipboardConfig{
			PollInterval: envOrDefaultMillis("HOTCLIP_CLIPBOARD_POLL_MS", 150),
			PreviewChars: envOrDefaultInt("HOTCLIP_CLIPBOARD_PREVIEW_CHARS", 500),
		},
		Pipeline: PipelineConfig{
			MinUtterance:       envOrDefaultMillis("HOTCLIP_MIN_UTTERANCE_MS", 300),
			TranscribeTimeout:  envOrDefaultMillis("HOTCLIP_TRANSCRIBE_TIMEOUT_MS", 1200),
			ReasonTimeout:      envOrDefaultMillis("HOTCLIP_REASON_TIMEOUT_MS", 1500),
			ExecuteTimeout:     envOrDefaultMillis("HOTCLIP_EXECUTE_TIMEOUT_MS", 10000),
			TransportRetryWait: envOrDefaultMillis("HOTCLIP_RETRY_WAIT_MS", 150),
		},
		Memory: MemoryConfig{
			Enabled: envOrDefaultBool("HOTCLIP_ENABLE_MEMORY", false),
			BaseDir: envOrDefault("HOTCLIP_MEMORY_DIR", filepath.Join(home, ".hotclip")),
		},
		Features: FeatureConfig{
			ScreenshotToCode: envOrDefaultBool("HOTCLIP_ENABLE_SCREENSHOT_TO_CODE", true),
		},
		Rules: RulesConfig{
			Path:           strings.TrimSpace(os.Getenv("HOTCLIP_RULES_FILE")),
			IterationLimit: envOrDefaultInt("HOTCLIP_RULE_ITERATION_LIMIT", 30),
		},
		Notify: NotifyConfig{
			Title:   envOrDefault("HOTCLIP_NOTIFICATION_TITLE", "Hotclip"),
			Command: strings.TrimSpace(os.Getenv("HOTCLIP_NOTIFY_COMMAND")),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Clipboard.PollInterval <= 0 {
		cfg.Clipboard.PollInterval = 150 * time.Millisecond
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}

	return cfg, nil
}

// Validate reports the fatal startup-only conditions: a misconfigured
// activation mode or missing credentials for the selected providers. These
// block process start and never occur mid-pipeline.
func (c Config) Validate() error {
	var errs []string

	switch c.Activation.Mode {
	case domain.ModeWakeword, domain.ModePushToTalk:
	default:
		errs = append(errs, fmt.Sprintf("HOTCLIP_ACTIVATION must be %q or %q, got %q",
			domain.ModeWakeword, domain.ModePushToTalk, c.Activation.Mode))
	}

	switch c.Provider.Reasoner {
	case "groq":
		if c.Provider.GroqAPIKey == "" {
			errs = append(errs, "GROQ_API_KEY is required when HOTCLIP_PROVIDER=groq")
		}
	case "gemini":
		if c.Provider.GeminiAPIKey == "" {
			errs = append(errs, "GEMINI_API_KEY is required when HOTCLIP_PROVIDER=gemini")
		}
	default:
		errs = append(errs, fmt.Sprintf("HOTCLIP_PROVIDER must be \"groq\" or \"gemini\", got %q", c.Provider.Reasoner))
	}

	switch c.Provider.Transcriber {
	case "groq":
		if c.Provider.GroqAPIKey == "" {
			errs = append(errs, "GROQ_API_KEY is required when HOTCLIP_TRANSCRIBER=groq")
		}
	case "deepgram":
		if c.Provider.DeepgramAPIKey == "" {
			errs = append(errs, "DEEPGRAM_API_KEY is required when HOTCLIP_TRANSCRIBER=deepgram")
		}
	default:
		errs = append(errs, fmt.Sprintf("HOTCLIP_TRANSCRIBER must be \"groq\" or \"deepgram\", got %q", c.Provider.Transcriber))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultMillis(key string, fallback int) time.Duration {
	ms := envOrDefaultInt(key, fallback)
	if ms < 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
