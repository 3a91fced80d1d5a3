package domain

import "time"

// ClipboardKind identifies what the clipboard currently holds.
type ClipboardKind string

const (
	ClipboardEmpty ClipboardKind = "empty"
	ClipboardText  ClipboardKind = "text"
	ClipboardImage ClipboardKind = "image"
)

// ClipboardSnapshot is an immutable, versioned capture of clipboard content.
// A new snapshot replaces the previous one atomically; Version strictly
// increases on every observed change.
type ClipboardSnapshot struct {
	Kind       ClipboardKind
	Text       string
	Image      []byte
	Version    uint64
	CapturedAt time.Time
}

// Preview returns a short descriptor of the snapshot suitable for prompts
// and logs. Text is truncated to max runes.
func (s ClipboardSnapshot) Preview(max int) string {
	switch s.Kind {
	case ClipboardText:
		runes := []rune(s.Text)
		if max > 0 && len(runes) > max {
			return string(runes[:max]) + "..."
		}
		return s.Text
	case ClipboardImage:
		return "[image in clipboard]"
	default:
		return "[clipboard is empty]"
	}
}

// ActivationEventKind identifies a raw activation signal.
type ActivationEventKind string

const (
	EventWakewordDetected ActivationEventKind = "wakeword_detected"
	EventKeyDown          ActivationEventKind = "key_down"
	EventKeyUp            ActivationEventKind = "key_up"
	EventUtteranceStart   ActivationEventKind = "utterance_start"
	EventUtteranceEnd     ActivationEventKind = "utterance_end"
)

// ActivationEvent is produced by the activation detector and never mutated.
type ActivationEvent struct {
	Kind ActivationEventKind
	At   time.Time
}

// ActivationMode selects exactly one trigger source per process lifetime.
type ActivationMode string

const (
	ModeWakeword   ActivationMode = "wakeword"
	ModePushToTalk ActivationMode = "push_to_talk"
)

// DetectorState models the activation state machine.
type DetectorState string

const (
	DetectorIdle      DetectorState = "idle"
	DetectorArmed     DetectorState = "armed"
	DetectorRecording DetectorState = "recording"
)

// Outcome classifies how a dispatched command ended.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ExecutionResult is created once per dispatched command and consumed by the
// notification sink.
type ExecutionResult struct {
	Outcome                  Outcome
	ClipboardVersionConsumed uint64
	Notification             string
}

// ErrorCode identifies the failure classes of the pipeline.
type ErrorCode string

const (
	ErrorCodeCapture    ErrorCode = "capture"
	ErrorCodeTransport  ErrorCode = "transport"
	ErrorCodeValidation ErrorCode = "validation"
	ErrorCodeExecution  ErrorCode = "execution"
	ErrorCodeFatal      ErrorCode = "fatal"
)

// MemoryHit is one ranked result from the semantic memory store.
type MemoryHit struct {
	ID    string
	Text  string
	Label string
	Score float64
}
