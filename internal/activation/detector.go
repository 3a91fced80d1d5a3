// Package activation turns raw audio or key-state signals into discrete
// utterance events consumed by the pipeline.
package activation

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// Event is one detector output. Utterance is the sealed buffer, set only on
// UtteranceEnd.
type Event struct {
	Kind      domain.ActivationEventKind
	At        time.Time
	Utterance *domain.UtteranceBuffer
}

// Config tunes the detector.
type Config struct {
	Mode          domain.ActivationMode
	Audio         ports.AudioConfig
	FrameDuration time.Duration
	// KeyCode is the push-to-talk key, matched against the key monitor output.
	KeyCode string
}

// Detector is the activation state machine. Exactly one mode runs per
// process lifetime; the two are never concurrent. It emits typed events on a
// single-consumer channel, and a start that arrives while already recording
// is suppressed so the recorder never has to reject anything itself.
type Detector struct {
	cfg      Config
	audio    ports.AudioCapture
	gate     ports.VoiceGate
	keys     ports.KeySource
	recorder *Recorder
	logger   *zap.Logger

	events chan Event
	state  domain.DetectorState
}

func NewDetector(cfg Config, audio ports.AudioCapture, gate ports.VoiceGate, keys ports.KeySource, logger *zap.Logger) *Detector {
	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = 30 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rest := domain.DetectorIdle
	if cfg.Mode == domain.ModeWakeword {
		rest = domain.DetectorArmed
	}
	return &Detector{
		cfg:      cfg,
		audio:    audio,
		gate:     gate,
		keys:     keys,
		recorder: NewRecorder(cfg.Audio.SampleRate),
		logger:   logger.Named("activation"),
		events:   make(chan Event, 8),
		state:    rest,
	}
}

// Events returns the single-consumer event channel. It closes when Run
// returns.
func (d *Detector) Events() <-chan Event { return d.events }

// State reports the current FSM state. Run owns all transitions, so this is
// only meaningful for observation.
func (d *Detector) State() domain.DetectorState { return d.state }

// Run drives the configured mode until ctx is cancelled. Capture failures
// are logged and retried; the loop never stops on a pipeline-scoped error.
func (d *Detector) Run(ctx context.Context) error {
	defer close(d.events)

	switch d.cfg.Mode {
	case domain.ModeWakeword:
		return d.runWakeword(ctx)
	case domain.ModePushToTalk:
		return d.runPushToTalk(ctx)
	default:
		return errors.New("unknown activation mode")
	}
}

func (d *Detector) runWakeword(ctx context.Context) error {
	frameBytes := d.frameBytes()

	for ctx.Err() == nil {
		session, err := d.audio.Start(ctx, d.cfg.Audio)
		if err != nil {
			d.logger.Warn("audio capture failed, retrying", zap.Error(err))
			if !sleep(ctx, time.Second) {
				break
			}
			continue
		}

		d.segmentStream(ctx, session, frameBytes)
		_ = session.Stop()
	}

	d.abandonRecording()
	return ctx.Err()
}

// segmentStream pushes capture frames through the voice gate, opening and
// sealing utterance buffers at speech boundaries.
func (d *Detector) segmentStream(ctx context.Context, session ports.AudioSession, frameBytes int) {
	frame := make([]byte, frameBytes)

	for ctx.Err() == nil {
		if _, err := io.ReadFull(session, frame); err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				d.logger.Warn("audio read failed", zap.Error(err))
			}
			return
		}

		switch d.gate.Process(frame) {
		case ports.BoundarySpeechStart:
			// The gate window holds the onset frames that preceded the
			// trigger, current frame included.
			d.beginUtterance(ctx, d.gate.Window())
		case ports.BoundarySpeechEnd:
			d.endUtterance(ctx)
		default:
			if d.state == domain.DetectorRecording {
				_ = d.recorder.Append(frame)
			}
		}
	}
}

func (d *Detector) runPushToTalk(ctx context.Context) error {
	keyEvents, err := d.keys.Events(ctx)
	if err != nil {
		return err
	}

	var (
		session  ports.AudioSession
		pumpDone chan struct{}
	)

	stopCapture := func() {
		if session != nil {
			_ = session.Stop()
			<-pumpDone
			session = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopCapture()
			d.abandonRecording()
			return ctx.Err()

		case ev, ok := <-keyEvents:
			if !ok {
				stopCapture()
				d.abandonRecording()
				return errors.New("key monitor exited")
			}

			switch ev.Kind {
			case domain.EventKeyDown:
				if d.state == domain.DetectorRecording {
					continue // edge suppressed
				}
				s, err := d.audio.Start(ctx, d.cfg.Audio)
				if err != nil {
					d.logger.Warn("audio capture failed", zap.Error(err))
					continue
				}
				session = s
				d.beginUtterance(ctx, nil)
				pumpDone = make(chan struct{})
				go d.pumpFrames(s, pumpDone)

			case domain.EventKeyUp:
				if d.state != domain.DetectorRecording {
					continue
				}
				stopCapture()
				d.endUtterance(ctx)
			}
		}
	}
}

func (d *Detector) pumpFrames(session ports.AudioSession, done chan struct{}) {
	defer close(done)
	buf := make([]byte, d.frameBytes())
	for {
		n, err := session.Read(buf)
		if n > 0 {
			_ = d.recorder.Append(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func (d *Detector) beginUtterance(ctx context.Context, onset [][]byte) {
	if d.state == domain.DetectorRecording {
		return // repeated key-down while already recording
	}
	now := time.Now()
	if err := d.recorder.Open(now); err != nil {
		d.logger.Warn("recorder rejected start", zap.Error(err))
		return
	}
	d.state = domain.DetectorRecording
	for _, frame := range onset {
		_ = d.recorder.Append(frame)
	}
	d.emit(ctx, Event{Kind: domain.EventUtteranceStart, At: now})
}

func (d *Detector) endUtterance(ctx context.Context) {
	if d.state != domain.DetectorRecording {
		return
	}
	buf, err := d.recorder.Seal()
	d.state = d.restState()
	if err != nil {
		d.logger.Warn("recorder seal failed", zap.Error(err))
		return
	}
	d.emit(ctx, Event{Kind: domain.EventUtteranceEnd, At: time.Now(), Utterance: buf})
	d.logger.Debug("utterance sealed", zap.Duration("duration", buf.Duration()))
}

func (d *Detector) abandonRecording() {
	d.recorder.Discard()
	d.state = d.restState()
}

func (d *Detector) restState() domain.DetectorState {
	if d.cfg.Mode == domain.ModeWakeword {
		return domain.DetectorArmed
	}
	return domain.DetectorIdle
}

func (d *Detector) emit(ctx context.Context, ev Event) {
	select {
	case d.events <- ev:
	case <-ctx.Done():
	}
}

func (d *Detector) frameBytes() int {
	sr := d.cfg.Audio.SampleRate
	if sr <= 0 {
		sr = 16000
	}
	samples := int(d.cfg.FrameDuration.Seconds() * float64(sr))
	if samples <= 0 {
		samples = 480
	}
	return samples * 2 // 16-bit mono
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
