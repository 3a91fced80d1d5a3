package config

import (
	"strings"
	"testing"
	"time"

	"hotclip/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HOTCLIP_PROVIDER", "HOTCLIP_TRANSCRIBER", "HOTCLIP_ACTIVATION",
		"HOTCLIP_WAKEWORD", "HOTCLIP_SAMPLE_RATE", "HOTCLIP_CLIPBOARD_POLL_MS",
		"HOTCLIP_ENABLE_MEMORY", "HOTCLIP_MIN_UTTERANCE_MS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Provider.Reasoner != "groq" || cfg.Provider.Transcriber != "groq" {
		t.Fatalf("unexpected provider defaults: %+v", cfg.Provider)
	}
	if cfg.Activation.Mode != domain.ModeWakeword {
		t.Fatalf("default activation mode = %q", cfg.Activation.Mode)
	}
	if cfg.Activation.Wakeword != "jarvis" {
		t.Fatalf("default wakeword = %q", cfg.Activation.Wakeword)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Clipboard.PollInterval != 150*time.Millisecond {
		t.Fatalf("default poll interval = %v", cfg.Clipboard.PollInterval)
	}
	if cfg.Pipeline.MinUtterance != 300*time.Millisecond {
		t.Fatalf("default min utterance = %v", cfg.Pipeline.MinUtterance)
	}
	if cfg.Memory.Enabled {
		t.Fatal("memory must be opt-in")
	}
	if !cfg.Features.ScreenshotToCode {
		t.Fatal("screenshot-to-code defaults on")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOTCLIP_PROVIDER", "gemini")
	t.Setenv("HOTCLIP_ACTIVATION", "push_to_talk")
	t.Setenv("HOTCLIP_WAKEWORD", "Computer")
	t.Setenv("HOTCLIP_SAMPLE_RATE", "48000")
	t.Setenv("HOTCLIP_ENABLE_MEMORY", "true")
	t.Setenv("HOTCLIP_REASON_TIMEOUT_MS", "2500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Provider.Reasoner != "gemini" {
		t.Fatalf("reasoner = %q", cfg.Provider.Reasoner)
	}
	if cfg.Activation.Mode != domain.ModePushToTalk {
		t.Fatalf("mode = %q", cfg.Activation.Mode)
	}
	if cfg.Activation.Wakeword != "computer" {
		t.Fatalf("wakeword must be lowercased, got %q", cfg.Activation.Wakeword)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Fatalf("sample rate = %d", cfg.Audio.SampleRate)
	}
	if !cfg.Memory.Enabled {
		t.Fatal("memory override not applied")
	}
	if cfg.Pipeline.ReasonTimeout != 2500*time.Millisecond {
		t.Fatalf("reason timeout = %v", cfg.Pipeline.ReasonTimeout)
	}
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("HOTCLIP_SAMPLE_RATE", "not a number")
	t.Setenv("HOTCLIP_CLIPBOARD_POLL_MS", "-50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("unparseable sample rate must fall back, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Clipboard.PollInterval != 150*time.Millisecond {
		t.Fatalf("negative poll interval must fall back, got %v", cfg.Clipboard.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Provider: ProviderConfig{
			Reasoner:    "groq",
			Transcriber: "groq",
			GroqAPIKey:  "gsk_test",
		},
		Activation: ActivationConfig{Mode: domain.ModeWakeword},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			"missing groq key",
			func(c *Config) { c.Provider.GroqAPIKey = "" },
			"GROQ_API_KEY",
		},
		{
			"unknown reasoner",
			func(c *Config) { c.Provider.Reasoner = "openai" },
			"HOTCLIP_PROVIDER",
		},
		{
			"deepgram without key",
			func(c *Config) { c.Provider.Transcriber = "deepgram" },
			"DEEPGRAM_API_KEY",
		},
		{
			"gemini without key",
			func(c *Config) { c.Provider.Reasoner = "gemini" },
			"GEMINI_API_KEY",
		},
		{
			"bad activation mode",
			func(c *Config) { c.Activation.Mode = "hold_to_speak" },
			"HOTCLIP_ACTIVATION",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err, tc.want)
			}
		})
	}
}
