package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// ApplyUtility runs one deterministic text utility. Operations arriving here
// have already passed enum validation.
func ApplyUtility(text, operation string) (string, error) {
	switch operation {
	case "trim":
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSpace(line)
		}
		return strings.TrimSpace(strings.Join(lines, "\n")), nil

	case "dedupe_lines":
		seen := make(map[string]bool)
		var out []string
		for _, line := range strings.Split(text, "\n") {
			if seen[line] {
				continue
			}
			seen[line] = true
			out = append(out, line)
		}
		return strings.Join(out, "\n"), nil

	case "sort_lines":
		lines := strings.Split(text, "\n")
		sort.Strings(lines)
		return strings.Join(lines, "\n"), nil

	case "extract_emails":
		matches := emailPattern.FindAllString(text, -1)
		if len(matches) == 0 {
			return "", fmt.Errorf("no email addresses found")
		}
		return strings.Join(dedupe(matches), "\n"), nil

	case "extract_urls":
		matches := urlPattern.FindAllString(text, -1)
		if len(matches) == 0 {
			return "", fmt.Errorf("no URLs found")
		}
		return strings.Join(dedupe(matches), "\n"), nil

	case "prettify_json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(strings.TrimSpace(text)), "", "  "); err != nil {
			return "", fmt.Errorf("clipboard does not hold valid JSON: %w", err)
		}
		return buf.String(), nil

	case "lowercase":
		return strings.ToLower(text), nil

	case "uppercase":
		return strings.ToUpper(text), nil

	default:
		return "", fmt.Errorf("unknown clipboard utility %q", operation)
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
