package activation

import (
	"errors"
	"sync"
	"time"

	"hotclip/internal/domain"
)

// ErrAlreadyRecording is returned when a second recording is started while
// one is active. Starts are rejected, never queued.
var ErrAlreadyRecording = errors.New("a recording is already active")

var errNotRecording = errors.New("no recording is active")

// Recorder owns the single live utterance buffer. At most one buffer is in
// the recording state process-wide.
type Recorder struct {
	sampleRate int

	mu     sync.Mutex
	active *domain.UtteranceBuffer
}

func NewRecorder(sampleRate int) *Recorder {
	return &Recorder{sampleRate: sampleRate}
}

// Open starts a new utterance buffer.
func (r *Recorder) Open(at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return ErrAlreadyRecording
	}
	r.active = domain.NewUtteranceBuffer(r.sampleRate, at)
	return nil
}

// Append adds a PCM frame to the live buffer.
func (r *Recorder) Append(frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return errNotRecording
	}
	return r.active.Append(frame)
}

// Seal freezes the live buffer, hands it off by value and clears the slot so
// a new recording can start.
func (r *Recorder) Seal() (*domain.UtteranceBuffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return nil, errNotRecording
	}
	buf := r.active
	buf.Seal()
	r.active = nil
	return buf, nil
}

// Discard drops the live buffer without handing it off.
func (r *Recorder) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Seal()
		r.active = nil
	}
}

// Recording reports whether a buffer is currently live.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}
