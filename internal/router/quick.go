package router

import (
	"regexp"
	"strings"

	"hotclip/internal/action"
)

// quickClassify short-circuits obvious phrasings without a reasoning call.
// Returns ok=false when the model is needed. CALCULATE is deliberately never
// quick-classified: the model has to compute the result.
func quickClassify(command string) (action.Command, bool) {
	lower := strings.ToLower(command)

	if containsAny(lower, "remove background", "remove the background", "make it transparent") {
		return action.RemoveBackground{
			Notice: action.Notice{Message: "Removing background", Emoji: "🖼️"},
		}, true
	}

	if containsAny(lower, "code this", "make this react", "convert to react", "tailwind this", "make this html") {
		return action.ScreenshotToCode{
			Notice: action.Notice{Message: "Converting screenshot to code", Emoji: "⚡"},
			Target: "react_tailwind",
		}, true
	}

	if containsAny(lower, "clear all memory", "clear memory", "delete all memory", "erase memory", "wipe memory") {
		return action.ClearMemory{
			Notice: action.Notice{Message: "Clearing all memory", Emoji: "🧹"},
		}, true
	}

	if containsAny(lower, "forget my", "forget the", "remove from memory", "delete from memory") {
		return action.DeleteMemory{
			Notice: action.Notice{Message: "Forgetting that", Emoji: "🗑️"},
			Query:  extractQuery(lower),
		}, true
	}

	// Save must be checked before search: "save this" also contains "this".
	if containsAny(lower, "remember this", "save this", "store this", "keep this", "save to memory") {
		label := extractLabel(lower)
		msg := "Saving to memory"
		if label != "" {
			msg = "Saving as " + label
		}
		return action.SaveMemory{
			Notice:   action.Notice{Message: truncate(msg, 50), Emoji: "💾"},
			Label:    label,
			Category: "important_info",
		}, true
	}

	if containsAny(lower,
		"what's my", "what is my", "whats my",
		"where did i save", "find my", "search memory", "recall",
		"get my", "show my", "retrieve my", "look up my") {
		query := extractQuery(lower)
		return action.SearchMemory{
			Notice: action.Notice{Message: truncate("Searching for "+query, 50), Emoji: "🔍"},
			Query:  query,
		}, true
	}

	if containsAny(lower, "to json", "make this json", "convert to json") {
		return quickStructure("json"), true
	}
	if containsAny(lower, "to csv", "make this csv", "convert to csv") {
		return quickStructure("csv"), true
	}

	return nil, false
}

func quickStructure(format string) action.StructureData {
	return action.StructureData{
		Notice: action.Notice{Message: "Converting to " + strings.ToUpper(format), Emoji: "📊"},
		Format: format,
	}
}

var (
	labelPattern = regexp.MustCompile(`(?:as my |as )(.+?)(?:\s*$|\.)`)
	queryPattern = regexp.MustCompile(`(?:what'?s my |what is my |whats my |find my |get my |show my |retrieve my |look up my |forget my |forget the )(.+?)(?:\s*\?|$)`)
)

func extractLabel(command string) string {
	if m := labelPattern.FindStringSubmatch(command); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractQuery(command string) string {
	if m := queryPattern.FindStringSubmatch(command); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(command)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
