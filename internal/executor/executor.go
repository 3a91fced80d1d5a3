// Package executor dispatches validated action commands to exactly one
// handler each and applies their side effects.
package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hotclip/internal/action"
	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// effect is what a handler produces: an optional clipboard write plus the
// notification describing the outcome. Handlers are pure with respect to
// everything except the collaborators they are given; the write itself
// happens only after the handler returns.
type effect struct {
	write   *ports.ClipboardContent
	message string
	emoji   string
}

type handlerFunc func(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error)

// Executor maps each action type to one handler. Commands arriving here have
// already passed enum and clipboard-kind validation; handlers never
// re-validate. The executor performs at most one clipboard write per
// dispatched command and emits exactly one notification.
type Executor struct {
	store      ports.SnapshotStore
	memory     ports.Memory
	transforms ports.ContentTransformer
	notifier   ports.Notifier
	title      string
	logger     *zap.Logger

	handlers map[action.Type]handlerFunc
}

func New(
	store ports.SnapshotStore,
	memory ports.Memory,
	transforms ports.ContentTransformer,
	notifier ports.Notifier,
	title string,
	logger *zap.Logger,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		store:      store,
		memory:     memory,
		transforms: transforms,
		notifier:   notifier,
		title:      title,
		logger:     logger.Named("executor"),
	}
	e.handlers = map[action.Type]handlerFunc{
		action.TypeCopyText:         e.handleCopyText,
		action.TypeCalculate:        e.handleCalculate,
		action.TypeShortReply:       e.handleShortReply,
		action.TypeNoAction:         e.handleNoAction,
		action.TypeRewriteText:      e.handleRewriteText,
		action.TypeStructureData:    e.handleStructureData,
		action.TypeDebugCode:        e.handleDebugCode,
		action.TypeTranslate:        e.handleTranslate,
		action.TypeScreenshotToCode: e.handleScreenshotToCode,
		action.TypeRemoveBackground: e.handleRemoveBackground,
		action.TypeSaveMemory:       e.handleSaveMemory,
		action.TypeSearchMemory:     e.handleSearchMemory,
		action.TypeDeleteMemory:     e.handleDeleteMemory,
		action.TypeClearMemory:      e.handleClearMemory,
		action.TypeClipboardUtility: e.handleClipboardUtility,
	}
	return e
}

// Execute runs the single handler for cmd against the pinned snapshot. A
// handler failure leaves the clipboard untouched and surfaces a failure
// notification; it never partially mutates state.
func (e *Executor) Execute(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) domain.ExecutionResult {
	handler, ok := e.handlers[cmd.Type()]
	if !ok {
		// Unreachable for validated commands; kept so the dispatch is total.
		return e.fail(ctx, snap, fmt.Sprintf("no handler for %s", cmd.Type()))
	}

	eff, err := handler(ctx, cmd, snap)
	if err != nil {
		e.logger.Warn("handler failed",
			zap.String("action", string(cmd.Type())),
			zap.Error(err))
		return e.fail(ctx, snap, failureMessage(cmd))
	}

	outcome := domain.OutcomeSkipped
	if eff.write != nil {
		if _, err := e.store.Apply(ctx, *eff.write); err != nil {
			e.logger.Warn("clipboard write failed", zap.Error(err))
			return e.fail(ctx, snap, "Failed to update clipboard")
		}
		outcome = domain.OutcomeApplied
	}

	if eff.message != "" {
		e.notify(ctx, eff.message, eff.emoji)
	}

	return domain.ExecutionResult{
		Outcome:                  outcome,
		ClipboardVersionConsumed: snap.Version,
		Notification:             eff.message,
	}
}

func (e *Executor) fail(ctx context.Context, snap domain.ClipboardSnapshot, message string) domain.ExecutionResult {
	e.notify(ctx, message, "❌")
	return domain.ExecutionResult{
		Outcome:                  domain.OutcomeFailed,
		ClipboardVersionConsumed: snap.Version,
		Notification:             message,
	}
}

func (e *Executor) notify(ctx context.Context, message, emoji string) {
	if err := e.notifier.Notify(ctx, e.title, message, emoji); err != nil {
		e.logger.Warn("notification failed", zap.Error(err))
	}
}

func failureMessage(cmd action.Command) string {
	switch cmd.Type() {
	case action.TypeRemoveBackground:
		return "Failed to remove background"
	case action.TypeScreenshotToCode:
		return "Failed to generate code"
	default:
		return "Failed to " + humanVerb(cmd.Type())
	}
}

func humanVerb(t action.Type) string {
	switch t {
	case action.TypeRewriteText:
		return "rewrite text"
	case action.TypeStructureData:
		return "structure data"
	case action.TypeDebugCode:
		return "debug code"
	case action.TypeTranslate:
		return "translate"
	case action.TypeSaveMemory:
		return "save to memory"
	case action.TypeSearchMemory:
		return "search memory"
	case action.TypeDeleteMemory:
		return "delete memory"
	case action.TypeClearMemory:
		return "clear memory"
	case action.TypeClipboardUtility:
		return "apply utility"
	default:
		return "complete the action"
	}
}
