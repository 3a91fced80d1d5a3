package activation

import (
	"context"
	"strings"
	"testing"
	"time"

	"hotclip/internal/domain"
)

const xinputSample = `EVENT type 13 (RawKeyPress)
    device: 3 (3)
    detail: 135
    valuators:

EVENT type 14 (RawKeyRelease)
    device: 3 (3)
    detail: 135
    valuators:

EVENT type 13 (RawKeyPress)
    device: 3 (3)
    detail: 36
    valuators:

EVENT type 17 (RawMotion)
    device: 2 (2)
    detail: 0
`

func TestParseKeyEventsMatchesKeyCode(t *testing.T) {
	t.Parallel()

	out := make(chan domain.ActivationEvent, 8)
	parseKeyEvents(context.Background(), strings.NewReader(xinputSample), "135", out)
	close(out)

	var events []domain.ActivationEventKind
	for ev := range out {
		events = append(events, ev.Kind)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events for keycode 135, got %d: %v", len(events), events)
	}
	if events[0] != domain.EventKeyDown || events[1] != domain.EventKeyUp {
		t.Fatalf("unexpected event order: %v", events)
	}
}

func TestParseKeyEventsIgnoresOtherKeys(t *testing.T) {
	t.Parallel()

	out := make(chan domain.ActivationEvent, 8)
	parseKeyEvents(context.Background(), strings.NewReader(xinputSample), "999", out)
	close(out)

	if _, ok := <-out; ok {
		t.Fatal("expected no events for an unbound keycode")
	}
}

func TestParseKeyEventsHandlesEmptyInput(t *testing.T) {
	t.Parallel()

	out := make(chan domain.ActivationEvent, 1)
	parseKeyEvents(context.Background(), strings.NewReader(""), "135", out)
	close(out)

	if _, ok := <-out; ok {
		t.Fatal("expected no events from empty input")
	}
}

func TestParseKeyEventsStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered channel with no reader: the send can never complete, so
	// only the context can unblock the parser.
	out := make(chan domain.ActivationEvent)
	done := make(chan struct{})
	go func() {
		parseKeyEvents(ctx, strings.NewReader(xinputSample), "135", out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("parser blocked on a full channel after cancellation")
	}
}
