// Package clipboard tracks the system clipboard as a stream of immutable,
// versioned snapshots and owns the single write path used by the executor.
package clipboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// Tracker polls the OS clipboard at a fixed interval and publishes a new
// snapshot whenever the change token moves. Versions strictly increase, and
// executor-originated writes go through Apply so the tracker never mistakes
// its own write for an external change.
type Tracker struct {
	clip     ports.Clipboard
	interval time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	current   domain.ClipboardSnapshot
	lastToken string
	version   uint64
}

func NewTracker(clip ports.Clipboard, interval time.Duration, logger *zap.Logger) *Tracker {
	if interval <= 0 {
		interval = 150 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		clip:     clip,
		interval: interval,
		logger:   logger.Named("tracker"),
		current:  domain.ClipboardSnapshot{Kind: domain.ClipboardEmpty},
	}
}

// Run polls until ctx is cancelled. Read errors are logged and skipped; the
// loop never stops on a pipeline-scoped failure.
func (t *Tracker) Run(ctx context.Context) {
	t.poll(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

func (t *Tracker) poll(ctx context.Context) {
	content, token, err := t.clip.ReadCurrent(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Debug("clipboard read failed", zap.Error(err))
		}
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if token == t.lastToken {
		return
	}
	t.publishLocked(content, token)
}

// Current returns the latest snapshot as of the call. Callers pin the
// returned value; it never changes underneath them.
func (t *Tracker) Current() domain.ClipboardSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Apply performs an executor-originated clipboard write. The new snapshot is
// published immediately with a bumped version and its token recorded, so the
// next poll does not re-ingest the write as an external change. Returns the
// version consumed by the write.
func (t *Tracker) Apply(ctx context.Context, content ports.ClipboardContent) (uint64, error) {
	if err := t.clip.Write(ctx, content); err != nil {
		return 0, err
	}

	token := ""
	if _, readToken, err := t.clip.ReadCurrent(ctx); err == nil {
		token = readToken
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishLocked(content, token)
	return t.version, nil
}

func (t *Tracker) publishLocked(content ports.ClipboardContent, token string) {
	t.version++
	t.lastToken = token
	t.current = domain.ClipboardSnapshot{
		Kind:       content.Kind,
		Text:       content.Text,
		Image:      content.Image,
		Version:    t.version,
		CapturedAt: time.Now(),
	}
	t.logger.Debug("clipboard snapshot published",
		zap.Uint64("version", t.version),
		zap.String("kind", string(content.Kind)))
}
