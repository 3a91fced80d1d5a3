// Package rules normalizes spoken transcripts into clean command text
// through deterministic substitution rules.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

type compiledRule struct {
	re          *regexp.Regexp
	replacement string
}

func (r compiledRule) apply(input string) (string, bool) {
	output := r.re.ReplaceAllString(input, r.replacement)
	return output, output != input
}

// Normalizer strips transcription artifacts (filler words, spoken
// punctuation) and applies optional user substitutions from a rules file of
// `find => replace` lines. Rules run repeatedly until stable, bounded by an
// iteration limit.
type Normalizer struct {
	rules     []compiledRule
	loopLimit int
}

// NewNormalizer compiles the built-in rules plus the optional user file. A
// missing file is fine; a malformed one is a startup error.
func NewNormalizer(path string, loopLimit int) (*Normalizer, error) {
	if loopLimit <= 0 {
		loopLimit = 30
	}

	rules := builtinRules()

	if strings.TrimSpace(path) != "" {
		contents, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
		}
		if err == nil {
			userRules, parseErr := parseRules(string(contents))
			if parseErr != nil {
				return nil, fmt.Errorf("failed to parse rules file %q: %w", path, parseErr)
			}
			rules = append(rules, userRules...)
		}
	}

	return &Normalizer{rules: rules, loopLimit: loopLimit}, nil
}

// Normalize cleans one transcript.
func (n *Normalizer) Normalize(text string) string {
	result := strings.TrimSpace(text)
	for i := 0; i < n.loopLimit; i++ {
		changed := false
		for _, rule := range n.rules {
			next, ruleChanged := rule.apply(result)
			if ruleChanged {
				result = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	result = collapseSpaces.ReplaceAllString(result, " ")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(result), ".,!?"))
}

var collapseSpaces = regexp.MustCompile(`\s{2,}`)

func builtinRules() []compiledRule {
	fillers := []string{"um", "uh", "er", "hmm", "you know", "please", "like,"}
	rules := make([]compiledRule, 0, len(fillers))
	for _, f := range fillers {
		rules = append(rules, compiledRule{
			re:          regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(f) + `\b`),
			replacement: "",
		})
	}
	return rules
}

func parseRules(contents string) ([]compiledRule, error) {
	lines := strings.Split(contents, "\n")
	rules := make([]compiledRule, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=>", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: expected `find => replace`", index+1)
		}
		from := strings.TrimSpace(parts[0])
		to := strings.TrimSpace(parts[1])
		if from == "" {
			return nil, fmt.Errorf("line %d: rule source cannot be empty", index+1)
		}

		rules = append(rules, compiledRule{
			re:          regexp.MustCompile("(?i)" + regexp.QuoteMeta(from)),
			replacement: to,
		})
	}

	return rules, nil
}
