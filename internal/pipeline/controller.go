// Package pipeline runs the utterance-to-action flow: it is the sole consumer
// of detector events, pins the clipboard snapshot at speech start, and drives
// transcription, routing, validation and execution for each sealed utterance.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"hotclip/internal/action"
	"hotclip/internal/activation"
	"hotclip/internal/domain"
	"hotclip/internal/ports"
	"hotclip/internal/router"
	"hotclip/internal/rules"
)

// CommandExecutor dispatches one validated command. Satisfied by the
// executor package; an interface here keeps the pipeline testable with fakes.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) domain.ExecutionResult
}

// Config tunes the per-stage deadlines.
type Config struct {
	Mode              domain.ActivationMode
	MinUtterance      time.Duration
	TranscribeTimeout time.Duration
	ReasonTimeout     time.Duration
	ExecuteTimeout    time.Duration
}

// Controller consumes detector events and runs at most one pipeline task at a
// time. An utterance that completes while a task is in flight takes a reduced
// path: it is transcribed only to check for the stop phrase, which cancels
// the in-flight task; any other content is dropped.
type Controller struct {
	cfg         Config
	events      <-chan activation.Event
	store       ports.SnapshotStore
	transcriber ports.Transcriber
	normalizer  *rules.Normalizer
	wakeword    *rules.WakewordGate
	router      *router.Router
	validator   *action.Validator
	executor    CommandExecutor
	notifier    ports.Notifier
	title       string
	logger      *zap.Logger

	mu             sync.Mutex
	busy           bool
	inflightCancel context.CancelFunc

	wg sync.WaitGroup

	pinned    domain.ClipboardSnapshot
	hasPinned bool
}

func NewController(
	cfg Config,
	events <-chan activation.Event,
	store ports.SnapshotStore,
	transcriber ports.Transcriber,
	normalizer *rules.Normalizer,
	wakeword *rules.WakewordGate,
	rt *router.Router,
	validator *action.Validator,
	exec CommandExecutor,
	notifier ports.Notifier,
	title string,
	logger *zap.Logger,
) *Controller {
	if cfg.MinUtterance <= 0 {
		cfg.MinUtterance = 300 * time.Millisecond
	}
	if cfg.TranscribeTimeout <= 0 {
		cfg.TranscribeTimeout = 1200 * time.Millisecond
	}
	if cfg.ReasonTimeout <= 0 {
		cfg.ReasonTimeout = 1500 * time.Millisecond
	}
	if cfg.ExecuteTimeout <= 0 {
		cfg.ExecuteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:         cfg,
		events:      events,
		store:       store,
		transcriber: transcriber,
		normalizer:  normalizer,
		wakeword:    wakeword,
		router:      rt,
		validator:   validator,
		executor:    exec,
		notifier:    notifier,
		title:       title,
		logger:      logger.Named("pipeline"),
	}
}

// Run processes detector events until ctx is cancelled or the event channel
// closes. Per-utterance failures are resolved locally; the loop never stops
// on them.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			c.wg.Wait()
			return ctx.Err()

		case ev, ok := <-c.events:
			if !ok {
				c.wg.Wait()
				return nil
			}
			c.handle(ctx, ev)
		}
	}
}

func (c *Controller) handle(ctx context.Context, ev activation.Event) {
	switch ev.Kind {
	case domain.EventUtteranceStart:
		// The snapshot is pinned now so a clipboard change during speech or
		// processing cannot alter what the command applies to.
		c.pinned = c.store.Current()
		c.hasPinned = true

	case domain.EventUtteranceEnd:
		if ev.Utterance == nil {
			return
		}
		snap := c.pinned
		if !c.hasPinned {
			snap = c.store.Current()
		}
		c.hasPinned = false
		c.dispatch(ctx, ev.Utterance, snap)
	}
}

func (c *Controller) dispatch(ctx context.Context, buf *domain.UtteranceBuffer, snap domain.ClipboardSnapshot) {
	if buf.Duration() < c.cfg.MinUtterance {
		c.logger.Debug("utterance below minimum duration, dropped",
			zap.Duration("duration", buf.Duration()))
		return
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.stopCheck(ctx, buf)
		}()
		return
	}
	c.busy = true
	taskCtx, cancel := context.WithCancel(ctx)
	c.inflightCancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			cancel()
			c.mu.Lock()
			c.busy = false
			c.inflightCancel = nil
			c.mu.Unlock()
		}()
		c.runTask(taskCtx, buf, snap)
	}()
}

// runTask is the full utterance path: transcribe, normalize, gate, route,
// validate, execute. Each stage failure resolves the utterance rather than
// propagating.
func (c *Controller) runTask(ctx context.Context, buf *domain.UtteranceBuffer, snap domain.ClipboardSnapshot) {
	command, ok := c.commandFrom(ctx, buf)
	if !ok {
		return
	}

	if c.wakeword.IsStop(command) {
		// Nothing is in flight on this path; a bare stop resolves silently.
		c.logger.Debug("stop phrase with no task in flight")
		return
	}

	rctx, rcancel := context.WithTimeout(ctx, c.cfg.ReasonTimeout)
	cmd, err := c.router.Route(rctx, command, snap)
	rcancel()
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("task cancelled during routing")
			return
		}
		c.logger.Warn("routing failed", zap.Error(err))
		cmd = action.Fallback("Request failed, try again")
	}

	validated := c.validator.Validate(cmd, snap.Kind)

	ectx, ecancel := context.WithTimeout(ctx, c.cfg.ExecuteTimeout)
	defer ecancel()
	result := c.executor.Execute(ectx, validated, snap)

	c.logger.Info("utterance resolved",
		zap.String("command", command),
		zap.String("action", string(validated.Type())),
		zap.String("outcome", string(result.Outcome)),
		zap.Uint64("clipboard_version", result.ClipboardVersionConsumed))
}

// stopCheck is the reduced path for utterances that complete while a task is
// in flight. Only the stop phrase has any effect.
func (c *Controller) stopCheck(ctx context.Context, buf *domain.UtteranceBuffer) {
	command, ok := c.commandFrom(ctx, buf)
	if !ok {
		return
	}
	if !c.wakeword.IsStop(command) {
		c.logger.Debug("utterance dropped while busy", zap.String("command", command))
		return
	}

	c.mu.Lock()
	cancel := c.inflightCancel
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	c.logger.Info("in-flight task cancelled by stop phrase")
	if err := c.notifier.Notify(ctx, c.title, "Cancelled", "🛑"); err != nil {
		c.logger.Warn("notification failed", zap.Error(err))
	}
}

// commandFrom transcribes and normalizes the utterance and, in wakeword mode,
// confirms the wakeword and strips it. ok is false when the utterance
// resolves without further processing.
func (c *Controller) commandFrom(ctx context.Context, buf *domain.UtteranceBuffer) (string, bool) {
	tctx, tcancel := context.WithTimeout(ctx, c.cfg.TranscribeTimeout)
	transcript, err := c.transcriber.Transcribe(tctx, buf)
	tcancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", false
		}
		c.logger.Warn("transcription failed", zap.Error(err))
		if err := c.notifier.Notify(ctx, c.title, "Could not hear that, try again", "🎤"); err != nil {
			c.logger.Warn("notification failed", zap.Error(err))
		}
		return "", false
	}

	command := c.normalizer.Normalize(transcript)
	if strings.TrimSpace(command) == "" {
		c.logger.Debug("empty transcript, dropped")
		return "", false
	}

	if c.cfg.Mode == domain.ModeWakeword {
		extracted, ok := c.wakeword.Extract(command)
		if !ok {
			// Stop is accepted bare so an in-flight task can be cancelled
			// without re-addressing the assistant.
			if c.wakeword.IsStop(command) {
				return command, true
			}
			c.logger.Debug("utterance not addressed to the wakeword, dropped")
			return "", false
		}
		command = extracted
	}

	return command, true
}
