package activation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// fakeAudioSession replays a fixed PCM stream, then reports EOF the way a
// stopped capture process does.
type fakeAudioSession struct {
	mu   sync.Mutex
	data []byte
	pos  int
}

func newFakeAudioSession(data []byte) *fakeAudioSession {
	return &fakeAudioSession{data: data}
}

func (s *fakeAudioSession) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *fakeAudioSession) Stop() error  { return nil }
func (s *fakeAudioSession) Close() error { return nil }

// fakeAudioCapture hands out scripted sessions, then fails so the detector's
// retry path backs off instead of spinning.
type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []*fakeAudioSession
}

func (c *fakeAudioCapture) Start(context.Context, ports.AudioConfig) (ports.AudioSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sessions) == 0 {
		return nil, errNoMoreSessions
	}
	s := c.sessions[0]
	c.sessions = c.sessions[1:]
	return s, nil
}

var errNoMoreSessions = errors.New("no more scripted sessions")

// scriptedGate returns a fixed boundary sequence, one per frame, and buffers
// every frame it has seen so the detector's onset recovery can be observed.
type scriptedGate struct {
	mu         sync.Mutex
	boundaries []ports.Boundary
	window     [][]byte
}

func (g *scriptedGate) Process(frame []byte) ports.Boundary {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.window = append(g.window, append([]byte(nil), frame...))
	if len(g.boundaries) == 0 {
		return ports.BoundaryNone
	}
	b := g.boundaries[0]
	g.boundaries = g.boundaries[1:]
	return b
}

func (g *scriptedGate) Window() [][]byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]byte(nil), g.window...)
}

func (g *scriptedGate) Reset() {}

type fakeKeySource struct {
	events chan domain.ActivationEvent
}

func (k *fakeKeySource) Events(context.Context) (<-chan domain.ActivationEvent, error) {
	return k.events, nil
}

func collectEvents(t *testing.T, events <-chan Event, want int, timeout time.Duration) []Event {
	t.Helper()
	var got []Event
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("timed out after %d/%d events", len(got), want)
		}
	}
	return got
}

func TestDetectorWakewordSegmentsUtterance(t *testing.T) {
	t.Parallel()

	const frameBytes = 960 // 30ms at 16kHz mono
	stream := make([]byte, frameBytes*4)
	capture := &fakeAudioCapture{sessions: []*fakeAudioSession{newFakeAudioSession(stream)}}
	gate := &scriptedGate{boundaries: []ports.Boundary{
		ports.BoundarySpeechStart,
		ports.BoundaryNone,
		ports.BoundaryNone,
		ports.BoundarySpeechEnd,
	}}

	detector := NewDetector(Config{
		Mode:          domain.ModeWakeword,
		Audio:         ports.AudioConfig{SampleRate: 16000, Channels: 1},
		FrameDuration: 30 * time.Millisecond,
	}, capture, gate, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = detector.Run(ctx)
		close(done)
	}()

	events := collectEvents(t, detector.Events(), 2, 2*time.Second)
	cancel()
	<-done

	if events[0].Kind != domain.EventUtteranceStart {
		t.Fatalf("expected utterance start, got %s", events[0].Kind)
	}
	if events[1].Kind != domain.EventUtteranceEnd {
		t.Fatalf("expected utterance end, got %s", events[1].Kind)
	}
	buf := events[1].Utterance
	if buf == nil {
		t.Fatal("utterance end carried no buffer")
	}
	// Frames 1-3 are recorded: the gate window at the trigger plus two
	// in-speech frames.
	if got := len(buf.Samples()); got != frameBytes*3 {
		t.Fatalf("unexpected recorded bytes: %d", got)
	}
	if buf.State() != domain.BufferSealed {
		t.Fatal("emitted buffer must be sealed")
	}
}

func TestDetectorRecoversOnsetAudio(t *testing.T) {
	t.Parallel()

	const frameBytes = 960
	// Four distinguishable frames; the gate does not trigger until the third.
	stream := make([]byte, 0, frameBytes*4)
	for i := byte(1); i <= 4; i++ {
		frame := make([]byte, frameBytes)
		for j := range frame {
			frame[j] = i
		}
		stream = append(stream, frame...)
	}

	capture := &fakeAudioCapture{sessions: []*fakeAudioSession{newFakeAudioSession(stream)}}
	gate := &scriptedGate{boundaries: []ports.Boundary{
		ports.BoundaryNone,
		ports.BoundaryNone,
		ports.BoundarySpeechStart,
		ports.BoundarySpeechEnd,
	}}

	detector := NewDetector(Config{
		Mode:          domain.ModeWakeword,
		Audio:         ports.AudioConfig{SampleRate: 16000, Channels: 1},
		FrameDuration: 30 * time.Millisecond,
	}, capture, gate, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = detector.Run(ctx)
		close(done)
	}()

	events := collectEvents(t, detector.Events(), 2, 2*time.Second)
	cancel()
	<-done

	samples := events[1].Utterance.Samples()
	// The two frames that preceded the trigger are in the utterance, in
	// order, so the first spoken words are not lost to the trigger delay.
	if got := len(samples); got != frameBytes*3 {
		t.Fatalf("expected the full gate window, got %d bytes", got)
	}
	if samples[0] != 1 || samples[frameBytes] != 2 || samples[frameBytes*2] != 3 {
		t.Fatalf("onset frames missing or out of order: %d %d %d",
			samples[0], samples[frameBytes], samples[frameBytes*2])
	}
}

func TestDetectorPushToTalkKeyCycle(t *testing.T) {
	t.Parallel()

	keys := &fakeKeySource{events: make(chan domain.ActivationEvent, 4)}
	session := newFakeAudioSession(make([]byte, 960*2))
	capture := &fakeAudioCapture{sessions: []*fakeAudioSession{session}}

	detector := NewDetector(Config{
		Mode:          domain.ModePushToTalk,
		Audio:         ports.AudioConfig{SampleRate: 16000, Channels: 1},
		FrameDuration: 30 * time.Millisecond,
		KeyCode:       "135",
	}, capture, &scriptedGate{}, keys, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = detector.Run(ctx)
		close(done)
	}()

	keys.events <- domain.ActivationEvent{Kind: domain.EventKeyDown, At: time.Now()}
	start := collectEvents(t, detector.Events(), 1, 2*time.Second)
	if start[0].Kind != domain.EventUtteranceStart {
		t.Fatalf("expected utterance start, got %s", start[0].Kind)
	}

	// Give the pump a moment to drain the fake stream.
	time.Sleep(50 * time.Millisecond)

	keys.events <- domain.ActivationEvent{Kind: domain.EventKeyUp, At: time.Now()}
	end := collectEvents(t, detector.Events(), 1, 2*time.Second)
	if end[0].Kind != domain.EventUtteranceEnd {
		t.Fatalf("expected utterance end, got %s", end[0].Kind)
	}
	if end[0].Utterance == nil || len(end[0].Utterance.Samples()) == 0 {
		t.Fatal("push-to-talk utterance carried no audio")
	}

	cancel()
	<-done
}

func TestDetectorSuppressesDoubleStart(t *testing.T) {
	t.Parallel()

	keys := &fakeKeySource{events: make(chan domain.ActivationEvent, 4)}
	capture := &fakeAudioCapture{sessions: []*fakeAudioSession{
		newFakeAudioSession(nil),
		newFakeAudioSession(nil),
	}}

	detector := NewDetector(Config{
		Mode:    domain.ModePushToTalk,
		Audio:   ports.AudioConfig{SampleRate: 16000, Channels: 1},
		KeyCode: "135",
	}, capture, &scriptedGate{}, keys, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = detector.Run(ctx)
		close(done)
	}()

	keys.events <- domain.ActivationEvent{Kind: domain.EventKeyDown, At: time.Now()}
	keys.events <- domain.ActivationEvent{Kind: domain.EventKeyDown, At: time.Now()} // repeat edge
	keys.events <- domain.ActivationEvent{Kind: domain.EventKeyUp, At: time.Now()}

	events := collectEvents(t, detector.Events(), 2, 2*time.Second)
	cancel()
	<-done

	if events[0].Kind != domain.EventUtteranceStart || events[1].Kind != domain.EventUtteranceEnd {
		t.Fatalf("repeat key-down produced extra events: %v, %v", events[0].Kind, events[1].Kind)
	}

	select {
	case ev, ok := <-detector.Events():
		if ok {
			t.Fatalf("unexpected extra event: %s", ev.Kind)
		}
	default:
	}
}
