package rules

import "testing"

func TestWakewordExtract(t *testing.T) {
	t.Parallel()

	g := NewWakewordGate("jarvis", "stop")

	cases := []struct {
		transcript string
		command    string
		ok         bool
	}{
		{"jarvis make this professional", "make this professional", true},
		{"hey jarvis, translate to french", "translate to french", true},
		{"ok jarvis convert to json", "convert to json", true},
		{"Jarvis, sort the lines", "sort the lines", true},
		{"make this professional", "", false},
		{"hey siri do something", "", false},
		{"jarvis", "", false},
	}

	for _, tc := range cases {
		command, ok := g.Extract(tc.transcript)
		if ok != tc.ok {
			t.Errorf("Extract(%q) ok = %v, want %v", tc.transcript, ok, tc.ok)
			continue
		}
		if command != tc.command {
			t.Errorf("Extract(%q) = %q, want %q", tc.transcript, command, tc.command)
		}
	}
}

func TestWakewordIsStop(t *testing.T) {
	t.Parallel()

	g := NewWakewordGate("jarvis", "that's enough")

	for _, command := range []string{"that's enough", "stop", "Stop.", "cancel", "never mind", "nevermind", "abort"} {
		if !g.IsStop(command) {
			t.Errorf("IsStop(%q) = false, want true", command)
		}
	}
	for _, command := range []string{"stop sign to json", "cancel my subscription text", "make this professional"} {
		if g.IsStop(command) {
			t.Errorf("IsStop(%q) = true, want false", command)
		}
	}
}
