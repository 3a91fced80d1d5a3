package executor

import (
	"context"
	"errors"
	"fmt"

	"hotclip/internal/action"
	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

var errMemoryUnavailable = errors.New("memory store is not available")

func (e *Executor) handleCopyText(_ context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.CopyText)
	return effect{
		write:   textWrite(c.Content),
		message: orDefault(c.Message, "Copied"),
		emoji:   orDefault(c.Emoji, "✨"),
	}, nil
}

func (e *Executor) handleCalculate(_ context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.Calculate)
	return effect{
		write:   textWrite(c.Content),
		message: orDefault(c.Message, "Result copied"),
		emoji:   orDefault(c.Emoji, "🧮"),
	}, nil
}

func (e *Executor) handleShortReply(_ context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.ShortReply)
	return effect{
		message: orDefault(c.Message, "Nothing to do"),
		emoji:   orDefault(c.Emoji, "ℹ️"),
	}, nil
}

func (e *Executor) handleNoAction(_ context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.NoAction)
	// An empty message stays silent: a resolved non-command must not
	// fabricate a notification.
	return effect{message: c.Message, emoji: orDefault(c.Emoji, "ℹ️")}, nil
}

func (e *Executor) handleRewriteText(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.RewriteText)
	content := c.Content
	if content == "" {
		out, err := e.transforms.RewriteText(ctx, snap.Text, c.Tone, c.Length)
		if err != nil {
			return effect{}, err
		}
		content = out
	}
	return effect{
		write:   textWrite(content),
		message: orDefault(c.Message, preview(content)),
		emoji:   orDefault(c.Emoji, "✍️"),
	}, nil
}

func (e *Executor) handleStructureData(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.StructureData)
	content := c.Content
	if content == "" {
		out, err := e.transforms.StructureData(ctx, snap.Text, c.Format, c.SQLDialect)
		if err != nil {
			return effect{}, err
		}
		content = out
	}
	return effect{
		write:   textWrite(content),
		message: orDefault(c.Message, "Converted to "+c.Format),
		emoji:   orDefault(c.Emoji, "📊"),
	}, nil
}

func (e *Executor) handleDebugCode(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.DebugCode)
	content := c.Content
	if content == "" {
		out, err := e.transforms.DebugCode(ctx, snap.Text, c.Mode, c.Language)
		if err != nil {
			return effect{}, err
		}
		content = out
	}
	return effect{
		write:   textWrite(content),
		message: orDefault(c.Message, "Code fixed and copied"),
		emoji:   orDefault(c.Emoji, "🐛"),
	}, nil
}

func (e *Executor) handleTranslate(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.Translate)
	content := c.Content
	if content == "" {
		out, err := e.transforms.Translate(ctx, snap.Text, c.SourceLanguage, c.TargetLanguage)
		if err != nil {
			return effect{}, err
		}
		content = out
	}
	return effect{
		write:   textWrite(content),
		message: orDefault(c.Message, "Translated to "+c.TargetLanguage),
		emoji:   orDefault(c.Emoji, "🌍"),
	}, nil
}

func (e *Executor) handleScreenshotToCode(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.ScreenshotToCode)
	content := c.Content
	if content == "" {
		out, err := e.transforms.ScreenshotToCode(ctx, snap.Image, c.Target, c.ComponentName)
		if err != nil {
			return effect{}, err
		}
		content = out
	}
	return effect{
		write:   textWrite(content),
		message: orDefault(c.Message, "Code copied"),
		emoji:   orDefault(c.Emoji, "⚡"),
	}, nil
}

func (e *Executor) handleRemoveBackground(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.RemoveBackground)
	img, err := e.transforms.RemoveBackground(ctx, snap.Image)
	if err != nil {
		return effect{}, err
	}
	return effect{
		write:   &ports.ClipboardContent{Kind: domain.ClipboardImage, Image: img},
		message: orDefault(c.Message, "Background removed"),
		emoji:   orDefault(c.Emoji, "🖼️"),
	}, nil
}

func (e *Executor) handleSaveMemory(ctx context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.SaveMemory)
	if e.memory == nil {
		return effect{}, errMemoryUnavailable
	}
	text := snap.Text
	if snap.Kind != domain.ClipboardText {
		text = snap.Preview(0)
	}
	if _, err := e.memory.Save(ctx, text, c.Label, c.Category); err != nil {
		return effect{}, fmt.Errorf("memory save failed: %w", err)
	}
	return effect{
		message: orDefault(c.Message, "Saved to memory"),
		emoji:   orDefault(c.Emoji, "💾"),
	}, nil
}

func (e *Executor) handleSearchMemory(ctx context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.SearchMemory)
	if e.memory == nil {
		return effect{}, errMemoryUnavailable
	}
	// Always hit the store; a routed response must never substitute
	// hallucinated content for stored values.
	hits, err := e.memory.Search(ctx, c.Query, 1)
	if err != nil {
		return effect{}, fmt.Errorf("memory search failed: %w", err)
	}
	if len(hits) == 0 {
		// A miss is an informational reply, not an error.
		return effect{message: "Nothing found in memory", emoji: "🔍"}, nil
	}
	return effect{
		write:   textWrite(hits[0].Text),
		message: "Found: " + preview(hits[0].Text),
		emoji:   "🔍",
	}, nil
}

func (e *Executor) handleDeleteMemory(ctx context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.DeleteMemory)
	if e.memory == nil {
		return effect{}, errMemoryUnavailable
	}
	hits, err := e.memory.Search(ctx, c.Query, 1)
	if err != nil {
		return effect{}, fmt.Errorf("memory search failed: %w", err)
	}
	if len(hits) == 0 {
		return effect{message: "No matching item found", emoji: "🗑️"}, nil
	}
	if err := e.memory.Delete(ctx, hits[0].ID); err != nil {
		return effect{}, fmt.Errorf("memory delete failed: %w", err)
	}
	label := hits[0].Label
	if label == "" {
		label = preview(hits[0].Text)
	}
	return effect{message: "Deleted: " + label, emoji: "🗑️"}, nil
}

func (e *Executor) handleClearMemory(ctx context.Context, cmd action.Command, _ domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.ClearMemory)
	if e.memory == nil {
		return effect{}, errMemoryUnavailable
	}
	if err := e.memory.Clear(ctx); err != nil {
		return effect{}, fmt.Errorf("memory clear failed: %w", err)
	}
	return effect{
		message: orDefault(c.Message, "Memory cleared"),
		emoji:   orDefault(c.Emoji, "🧹"),
	}, nil
}

func (e *Executor) handleClipboardUtility(_ context.Context, cmd action.Command, snap domain.ClipboardSnapshot) (effect, error) {
	c := cmd.(action.ClipboardUtility)
	result, err := ApplyUtility(snap.Text, c.Operation)
	if err != nil {
		return effect{}, err
	}
	return effect{
		write:   textWrite(result),
		message: orDefault(c.Message, "Applied "+c.Operation),
		emoji:   orDefault(c.Emoji, "🔧"),
	}, nil
}

func textWrite(text string) *ports.ClipboardContent {
	return &ports.ClipboardContent{Kind: domain.ClipboardText, Text: text}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) > 40 {
		return string(runes[:40]) + "..."
	}
	return s
}
