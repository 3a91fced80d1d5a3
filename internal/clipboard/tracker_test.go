package clipboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// fakeClipboard is an in-process clipboard with a counter-based change token.
type fakeClipboard struct {
	mu      sync.Mutex
	content ports.ClipboardContent
	token   string
	readErr error
}

func (f *fakeClipboard) ReadCurrent(context.Context) (ports.ClipboardContent, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return ports.ClipboardContent{}, "", f.readErr
	}
	return f.content, f.token, nil
}

func (f *fakeClipboard) Write(_ context.Context, content ports.ClipboardContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
	f.token = f.token + "'"
	return nil
}

func (f *fakeClipboard) setExternal(content ports.ClipboardContent, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = content
	f.token = token
}

func TestTrackerPublishesOnTokenChange(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	clip.setExternal(ports.ClipboardContent{Kind: domain.ClipboardText, Text: "first"}, "t1")
	tracker := NewTracker(clip, time.Hour, nil)

	tracker.poll(context.Background())
	snap := tracker.Current()
	if snap.Version != 1 || snap.Text != "first" {
		t.Fatalf("unexpected snapshot after first poll: %+v", snap)
	}

	// Same token: no new version.
	tracker.poll(context.Background())
	if got := tracker.Current().Version; got != 1 {
		t.Fatalf("version moved without a token change: %d", got)
	}

	clip.setExternal(ports.ClipboardContent{Kind: domain.ClipboardText, Text: "second"}, "t2")
	tracker.poll(context.Background())
	snap = tracker.Current()
	if snap.Version != 2 || snap.Text != "second" {
		t.Fatalf("unexpected snapshot after change: %+v", snap)
	}
}

func TestTrackerVersionsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	tracker := NewTracker(clip, time.Hour, nil)

	last := uint64(0)
	for i := 0; i < 5; i++ {
		clip.setExternal(ports.ClipboardContent{Kind: domain.ClipboardText, Text: "v"}, time.Now().Add(time.Duration(i)).String())
		tracker.poll(context.Background())
		v := tracker.Current().Version
		if v <= last {
			t.Fatalf("version did not increase: %d after %d", v, last)
		}
		last = v
	}
}

func TestTrackerApplyDoesNotReingestOwnWrite(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	clip.setExternal(ports.ClipboardContent{Kind: domain.ClipboardText, Text: "original"}, "t1")
	tracker := NewTracker(clip, time.Hour, nil)
	tracker.poll(context.Background())

	version, err := tracker.Apply(context.Background(), ports.ClipboardContent{Kind: domain.ClipboardText, Text: "transformed"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected version 2 after apply, got %d", version)
	}

	// The next poll sees the token the write produced and must not publish a
	// third version.
	tracker.poll(context.Background())
	snap := tracker.Current()
	if snap.Version != 2 {
		t.Fatalf("own write was re-ingested as an external change: version %d", snap.Version)
	}
	if snap.Text != "transformed" {
		t.Fatalf("unexpected snapshot text: %q", snap.Text)
	}
}

func TestTrackerApplyWriteFailure(t *testing.T) {
	t.Parallel()

	clip := &failingWriteClipboard{}
	tracker := NewTracker(clip, time.Hour, nil)

	if _, err := tracker.Apply(context.Background(), ports.ClipboardContent{Kind: domain.ClipboardText, Text: "x"}); err == nil {
		t.Fatal("expected apply to surface the write error")
	}
	if v := tracker.Current().Version; v != 0 {
		t.Fatalf("failed write must not publish a snapshot, version %d", v)
	}
}

func TestTrackerSurvivesReadErrors(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{readErr: errors.New("no display")}
	tracker := NewTracker(clip, time.Hour, nil)

	tracker.poll(context.Background())
	if v := tracker.Current().Version; v != 0 {
		t.Fatalf("read error published a snapshot: version %d", v)
	}

	clip.mu.Lock()
	clip.readErr = nil
	clip.mu.Unlock()
	clip.setExternal(ports.ClipboardContent{Kind: domain.ClipboardText, Text: "back"}, "t9")

	tracker.poll(context.Background())
	if got := tracker.Current().Text; got != "back" {
		t.Fatalf("tracker did not recover after read error: %q", got)
	}
}

type failingWriteClipboard struct{}

func (failingWriteClipboard) ReadCurrent(context.Context) (ports.ClipboardContent, string, error) {
	return ports.ClipboardContent{}, "t", nil
}

func (failingWriteClipboard) Write(context.Context, ports.ClipboardContent) error {
	return errors.New("write denied")
}
