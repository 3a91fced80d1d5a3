// Package router builds the classification prompt from an utterance plus the
// pinned clipboard snapshot, invokes the reasoning service once, and parses
// the raw response into a candidate action command.
package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"hotclip/internal/action"
	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// Router routes a spoken command to a candidate action. The snapshot passed
// in was captured at UtteranceStart, never read live, so a clipboard change
// mid-pipeline cannot alter the action being computed.
type Router struct {
	reasoner     ports.Reasoner
	memory       ports.Memory // nil when the memory feature is off
	previewChars int
	logger       *zap.Logger
}

func NewRouter(reasoner ports.Reasoner, memory ports.Memory, previewChars int, logger *zap.Logger) *Router {
	if previewChars <= 0 {
		previewChars = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		reasoner:     reasoner,
		memory:       memory,
		previewChars: previewChars,
		logger:       logger.Named("router"),
	}
}

// Route classifies command against the pinned snapshot. The returned error
// is always transport-class; a malformed or unrecognized response resolves
// locally to the validation fallback instead.
func (r *Router) Route(ctx context.Context, command string, snapshot domain.ClipboardSnapshot) (action.Command, error) {
	if quick, ok := quickClassify(command); ok {
		r.logger.Debug("quick-classified", zap.String("type", string(quick.Type())))
		return quick, nil
	}

	memoryContext := r.memoryContext(ctx, command)

	raw, err := r.reasoner.Classify(ctx, ports.ClassifyRequest{
		System: buildSystemPrompt(snapshot, r.previewChars, memoryContext),
		User:   command,
	})
	if err != nil {
		return nil, err
	}

	cmd, err := action.Decode(extractJSON(raw))
	if err != nil {
		// Not well-formed per the action schema: a validation failure,
		// not a transport failure.
		r.logger.Warn("unparseable reasoning response", zap.Error(err))
		return action.Fallback("Could not understand the response"), nil
	}
	return cmd, nil
}

// memoryContext searches the store when the command looks like a recall
// request, mirroring the original assistant's heuristic.
func (r *Router) memoryContext(ctx context.Context, command string) string {
	if r.memory == nil {
		return ""
	}
	lower := strings.ToLower(command)
	recall := false
	for _, w := range []string{"find", "where", "search", "recall", "what was", "what's my", "what is my"} {
		if strings.Contains(lower, w) {
			recall = true
			break
		}
	}
	if !recall {
		return ""
	}
	hits, err := r.memory.Search(ctx, command, 3)
	if err != nil {
		r.logger.Warn("memory search for context failed", zap.Error(err))
		return ""
	}
	return formatMemoryContext(hits)
}

// extractJSON tolerates a model wrapping the payload in markdown fences.
func extractJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		return []byte(strings.TrimSpace(s))
	}
	if start := strings.Index(s, "{"); start > 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return []byte(s[start : end+1])
		}
	}
	return []byte(s)
}
