package domain

import (
	"errors"
	"time"
)

// BufferState marks whether an utterance buffer is still accepting frames.
type BufferState string

const (
	BufferRecording BufferState = "recording"
	BufferSealed    BufferState = "sealed"
)

var ErrBufferSealed = errors.New("utterance buffer is sealed")

// UtteranceBuffer accumulates raw PCM audio between UtteranceStart and
// UtteranceEnd. It is owned exclusively by the recorder; at most one buffer is
// in the recording state process-wide.
type UtteranceBuffer struct {
	samples    []byte
	sampleRate int
	startedAt  time.Time
	state      BufferState
}

// NewUtteranceBuffer opens a buffer in the recording state.
func NewUtteranceBuffer(sampleRate int, startedAt time.Time) *UtteranceBuffer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &UtteranceBuffer{
		sampleRate: sampleRate,
		startedAt:  startedAt,
		state:      BufferRecording,
	}
}

// Append adds a frame of 16-bit PCM samples. Appending to a sealed buffer is
// an error, never silently accepted.
func (b *UtteranceBuffer) Append(frame []byte) error {
	if b.state != BufferRecording {
		return ErrBufferSealed
	}
	b.samples = append(b.samples, frame...)
	return nil
}

// Seal freezes the buffer; further appends fail.
func (b *UtteranceBuffer) Seal() {
	b.state = BufferSealed
}

func (b *UtteranceBuffer) State() BufferState { return b.state }

func (b *UtteranceBuffer) StartedAt() time.Time { return b.startedAt }

func (b *UtteranceBuffer) SampleRate() int { return b.sampleRate }

// Samples returns the accumulated raw PCM bytes.
func (b *UtteranceBuffer) Samples() []byte { return b.samples }

// Duration reports how much audio the buffer holds, assuming mono 16-bit PCM.
func (b *UtteranceBuffer) Duration() time.Duration {
	bytesPerSecond := b.sampleRate * 2
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(len(b.samples)) * time.Second / time.Duration(bytesPerSecond)
}
