// Package bootstrap assembles the configured providers and the three
// long-running components (tracker, detector, pipeline) into one application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hotclip/internal/action"
	"hotclip/internal/activation"
	"hotclip/internal/audio"
	"hotclip/internal/clipboard"
	"hotclip/internal/config"
	"hotclip/internal/domain"
	"hotclip/internal/executor"
	"hotclip/internal/memory"
	"hotclip/internal/notify"
	"hotclip/internal/pipeline"
	"hotclip/internal/ports"
	"hotclip/internal/providers/deepgram"
	"hotclip/internal/providers/gemini"
	"hotclip/internal/providers/groq"
	"hotclip/internal/router"
	"hotclip/internal/rules"
	"hotclip/internal/transforms"
)

// App is the wired application. Run starts the background loops and blocks
// until ctx is cancelled.
type App struct {
	Tracker  *clipboard.Tracker
	Detector *activation.Detector
	Pipeline *pipeline.Controller

	logger  *zap.Logger
	closers []func() error
}

// Build wires every component from the resolved configuration. Failures here
// are fatal startup errors.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{logger: logger}

	clip, err := clipboard.NewExecClipboard()
	if err != nil {
		return nil, err
	}
	tracker := clipboard.NewTracker(clip, cfg.Clipboard.PollInterval, logger)

	var notifier ports.Notifier
	n, err := notify.New(cfg.Notify.Command)
	switch {
	case err == nil:
		notifier = n
	case errors.Is(err, notify.ErrNoNotifyTool):
		logger.Warn("no desktop notification tool found, notifications disabled")
		notifier = notify.NopNotifier{}
	default:
		return nil, err
	}

	var (
		reasoner       ports.Reasoner
		geminiProvider *gemini.Provider
	)
	groqProvider := groq.NewProvider(groq.Config{
		APIKey:       cfg.Provider.GroqAPIKey,
		APIBaseURL:   cfg.Provider.GroqAPIBaseURL,
		Model:        cfg.Provider.GroqModel,
		WhisperModel: cfg.Provider.GroqWhisperModel,
		RetryWait:    cfg.Pipeline.TransportRetryWait,
	})

	switch cfg.Provider.Reasoner {
	case "groq":
		reasoner = groqProvider
	case "gemini":
		geminiProvider, err = gemini.NewProvider(ctx, gemini.Config{
			APIKey:    cfg.Provider.GeminiAPIKey,
			Model:     cfg.Provider.GeminiModel,
			RetryWait: cfg.Pipeline.TransportRetryWait,
		})
		if err != nil {
			return nil, err
		}
		reasoner = geminiProvider
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", cfg.Provider.Reasoner)
	}

	var transcriber ports.Transcriber
	switch cfg.Provider.Transcriber {
	case "groq":
		transcriber = groqProvider
	case "deepgram":
		transcriber = deepgram.NewProvider(deepgram.Config{
			APIKey:      cfg.Provider.DeepgramAPIKey,
			APIBaseURL:  cfg.Provider.DeepgramAPIBaseURL,
			Model:       cfg.Provider.DeepgramModel,
			Language:    cfg.Provider.DeepgramLanguage,
			SmartFormat: true,
			RetryWait:   cfg.Pipeline.TransportRetryWait,
		})
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider.Transcriber)
	}

	var mem ports.Memory
	if cfg.Memory.Enabled {
		var embedder memory.Embedder
		if cfg.Provider.GeminiAPIKey != "" {
			if geminiProvider == nil {
				geminiProvider, err = gemini.NewProvider(ctx, gemini.Config{
					APIKey:    cfg.Provider.GeminiAPIKey,
					Model:     cfg.Provider.GeminiModel,
					RetryWait: cfg.Pipeline.TransportRetryWait,
				})
				if err != nil {
					return nil, err
				}
			}
			embedder = geminiProvider.NewEmbedder("")
		} else {
			logger.Info("no embedding credentials, memory search degrades to keywords")
		}
		store, err := memory.Open(cfg.Memory.BaseDir, embedder)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store.Close)
		mem = store
	}

	var remover transforms.BackgroundRemover
	if r := transforms.NewRembgRemover(); r != nil {
		remover = r
	}
	transformer := transforms.New(reasoner, remover)

	normalizer, err := rules.NewNormalizer(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return nil, err
	}
	wakeword := rules.NewWakewordGate(cfg.Activation.Wakeword, cfg.Activation.StopPhrase)

	rt := router.NewRouter(reasoner, mem, cfg.Clipboard.PreviewChars, logger)
	validator := action.NewValidator(action.Toggles{
		MemoryEnabled:           cfg.Memory.Enabled,
		ScreenshotToCodeEnabled: cfg.Features.ScreenshotToCode,
	})
	exec := executor.New(tracker, mem, transformer, notifier, cfg.Notify.Title, logger)

	capture := audio.NewFFmpegCapture(cfg.Audio.RecorderCommand)
	gate := activation.NewEnergyGate(0, 0, 0)

	var keys ports.KeySource
	if cfg.Activation.Mode == domain.ModePushToTalk {
		keys = activation.NewXInputKeySource(cfg.Activation.KeyMonitorCommand, cfg.Activation.KeyCode, logger)
	}

	detector := activation.NewDetector(activation.Config{
		Mode: cfg.Activation.Mode,
		Audio: ports.AudioConfig{
			SampleRate:  cfg.Audio.SampleRate,
			Channels:    cfg.Audio.Channels,
			InputFormat: cfg.Audio.InputFormat,
			InputDevice: cfg.Audio.InputDevice,
		},
		FrameDuration: cfg.Audio.FrameDuration,
		KeyCode:       cfg.Activation.KeyCode,
	}, capture, gate, keys, logger)

	ctl := pipeline.NewController(pipeline.Config{
		Mode:              cfg.Activation.Mode,
		MinUtterance:      cfg.Pipeline.MinUtterance,
		TranscribeTimeout: cfg.Pipeline.TranscribeTimeout,
		ReasonTimeout:     cfg.Pipeline.ReasonTimeout,
		ExecuteTimeout:    cfg.Pipeline.ExecuteTimeout,
	}, detector.Events(), tracker, transcriber, normalizer, wakeword, rt, validator, exec, notifier, cfg.Notify.Title, logger)

	app.Tracker = tracker
	app.Detector = detector
	app.Pipeline = ctl
	return app, nil
}

// Run starts the clipboard tracker and activation detector and drives the
// pipeline until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.Tracker.Run(ctx)

	detectorErr := make(chan error, 1)
	go func() {
		detectorErr <- a.Detector.Run(ctx)
	}()

	err := a.Pipeline.Run(ctx)
	if derr := <-detectorErr; derr != nil && !errors.Is(derr, context.Canceled) {
		a.logger.Error("detector stopped", zap.Error(derr))
		if err == nil || errors.Is(err, context.Canceled) {
			err = derr
		}
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// Close releases resources held by the wired components.
func (a *App) Close() error {
	var first error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
