package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// WakewordGate confirms the wakeword on the transcript and extracts the
// command that follows it. Detection on text (after transcription) keeps the
// audio-side trigger engine swappable.
type WakewordGate struct {
	patterns   []*regexp.Regexp
	wakeword   string
	stopPhrase string
}

func NewWakewordGate(wakeword, stopPhrase string) *WakewordGate {
	w := regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(wakeword)))
	return &WakewordGate{
		wakeword:   strings.ToLower(strings.TrimSpace(wakeword)),
		stopPhrase: strings.ToLower(strings.TrimSpace(stopPhrase)),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`^hey\s+%s[\s,]+(.+)$`, w)),
			regexp.MustCompile(fmt.Sprintf(`^ok\s+%s[\s,]+(.+)$`, w)),
			regexp.MustCompile(fmt.Sprintf(`^%s[\s,]+(.+)$`, w)),
		},
	}
}

// Extract returns the command following the wakeword, or ok=false when the
// transcript is not addressed to us.
func (g *WakewordGate) Extract(transcript string) (command string, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(transcript))
	for _, p := range g.patterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	// Bare wakeword with trailing words but no separator.
	if strings.HasPrefix(lower, g.wakeword) {
		rest := strings.TrimSpace(strings.TrimPrefix(lower, g.wakeword))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
		if rest != "" {
			return rest, true
		}
	}
	return "", false
}

// IsStop reports whether a normalized command is the stop phrase.
func (g *WakewordGate) IsStop(command string) bool {
	c := strings.ToLower(strings.TrimSpace(strings.Trim(command, ".,!?")))
	if c == g.stopPhrase {
		return true
	}
	switch c {
	case "stop", "cancel", "never mind", "nevermind", "abort":
		return true
	}
	return false
}
