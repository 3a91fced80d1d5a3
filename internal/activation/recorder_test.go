package activation

import (
	"errors"
	"testing"
	"time"

	"hotclip/internal/domain"
)

func TestRecorderLifecycle(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(16000)
	if rec.Recording() {
		t.Fatal("fresh recorder must be idle")
	}

	start := time.Now()
	if err := rec.Open(start); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !rec.Recording() {
		t.Fatal("recorder should be live after open")
	}

	if err := rec.Append(make([]byte, 320)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	buf, err := rec.Seal()
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if buf.State() != domain.BufferSealed {
		t.Fatalf("sealed buffer in state %v", buf.State())
	}
	if got := len(buf.Samples()); got != 320 {
		t.Fatalf("unexpected sample bytes: %d", got)
	}
	if rec.Recording() {
		t.Fatal("recorder should be idle after seal")
	}
}

func TestRecorderRejectsSecondOpen(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(16000)
	if err := rec.Open(time.Now()); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := rec.Open(time.Now()); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
}

func TestRecorderAppendAfterSealFails(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(16000)
	_ = rec.Open(time.Now())
	buf, _ := rec.Seal()

	if err := rec.Append([]byte{1, 2}); err == nil {
		t.Fatal("append with no live buffer must fail")
	}
	if err := buf.Append([]byte{1, 2}); !errors.Is(err, domain.ErrBufferSealed) {
		t.Fatalf("expected ErrBufferSealed, got %v", err)
	}
}

func TestRecorderDiscard(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(16000)
	_ = rec.Open(time.Now())
	rec.Discard()

	if rec.Recording() {
		t.Fatal("discard should clear the live buffer")
	}
	if err := rec.Open(time.Now()); err != nil {
		t.Fatalf("open after discard failed: %v", err)
	}
}
