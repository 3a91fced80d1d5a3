package ports

import (
	"context"
	"io"

	"hotclip/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session emitting raw 16-bit PCM.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Boundary is a speech boundary decision from the voice activity gate.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundarySpeechStart
	BoundarySpeechEnd
)

// VoiceGate segments a continuous audio stream into utterances. The concrete
// engine is a black box; the default implementation is an energy gate. The
// gate buffers the frames it is deciding over, so the onset audio that led to
// a SpeechStart can be recovered instead of lost.
type VoiceGate interface {
	Process(frame []byte) Boundary
	// Window returns the buffered recent frames, oldest first. The returned
	// slices are only valid until the next Process call.
	Window() [][]byte
	Reset()
}

// KeySource emits KeyDown/KeyUp events for the push-to-talk binding. The
// returned channel closes when ctx is done or the underlying monitor exits.
type KeySource interface {
	Events(ctx context.Context) (<-chan domain.ActivationEvent, error)
}

// Transcriber converts a sealed utterance buffer to text. Failures are
// transport-class errors.
type Transcriber interface {
	Transcribe(ctx context.Context, buf *domain.UtteranceBuffer) (string, error)
}

// ClassifyRequest is the single request/response port to the reasoning
// service: a prompt in, a raw JSON action payload out.
type ClassifyRequest struct {
	System string
	User   string
	Image  []byte
}

// Reasoner classifies an utterance into a raw action payload.
type Reasoner interface {
	Classify(ctx context.Context, req ClassifyRequest) ([]byte, error)
}

// ClipboardContent is one typed clipboard payload.
type ClipboardContent struct {
	Kind  domain.ClipboardKind
	Text  string
	Image []byte
}

// Clipboard is the OS-level clipboard wrapper. ReadCurrent returns the
// content and an opaque change token that differs whenever the clipboard
// changed.
type Clipboard interface {
	ReadCurrent(ctx context.Context) (ClipboardContent, string, error)
	Write(ctx context.Context, content ClipboardContent) error
}

// SnapshotStore is the tracker surface the pipeline and executor consume:
// the latest readable snapshot plus the single write path that keeps
// versioning consistent across executor-originated writes.
type SnapshotStore interface {
	Current() domain.ClipboardSnapshot
	Apply(ctx context.Context, content ClipboardContent) (uint64, error)
}

// Memory is the persistent semantic store collaborator.
type Memory interface {
	Save(ctx context.Context, text, label, category string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]domain.MemoryHit, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ContentTransformer provides the stateless leaf transforms the executor
// delegates to when a routed command carries no precomputed content.
type ContentTransformer interface {
	RewriteText(ctx context.Context, text, tone, length string) (string, error)
	StructureData(ctx context.Context, text, format, sqlDialect string) (string, error)
	DebugCode(ctx context.Context, code, mode, language string) (string, error)
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
	ScreenshotToCode(ctx context.Context, image []byte, target, componentName string) (string, error)
	RemoveBackground(ctx context.Context, image []byte) ([]byte, error)
}

// Notifier is the desktop notification sink.
type Notifier interface {
	Notify(ctx context.Context, title, message, emoji string) error
}
