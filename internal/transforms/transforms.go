// Package transforms implements the clipboard content transformations that
// require a language model: rewriting, data structuring, code debugging,
// translation and screenshot-to-code. Background removal shells out to a
// local tool instead.
package transforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hotclip/internal/ports"
)

// Transformer implements ports.ContentTransformer on top of a reasoner.
type Transformer struct {
	reasoner ports.Reasoner
	remover  BackgroundRemover
}

// BackgroundRemover strips the background from a PNG image.
type BackgroundRemover interface {
	Remove(ctx context.Context, image []byte) ([]byte, error)
}

func New(reasoner ports.Reasoner, remover BackgroundRemover) *Transformer {
	return &Transformer{reasoner: reasoner, remover: remover}
}

func (t *Transformer) RewriteText(ctx context.Context, text, tone, length string) (string, error) {
	return t.generate(ctx, fmt.Sprintf(rewritePrompt, tone, length, text), nil)
}

func (t *Transformer) StructureData(ctx context.Context, text, format, sqlDialect string) (string, error) {
	return t.generate(ctx, fmt.Sprintf(structurePrompt, format, sqlDialect, text), nil)
}

func (t *Transformer) DebugCode(ctx context.Context, text, mode, language string) (string, error) {
	return t.generate(ctx, fmt.Sprintf(debugPrompt, mode, language, text), nil)
}

func (t *Transformer) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	if sourceLanguage == "" {
		sourceLanguage = "auto"
	}
	return t.generate(ctx, fmt.Sprintf(translatePrompt, sourceLanguage, targetLanguage, text), nil)
}

func (t *Transformer) ScreenshotToCode(ctx context.Context, image []byte, target, componentName string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("no image to convert")
	}
	return t.generate(ctx, fmt.Sprintf(screenshotPrompt, target, componentName, componentName), image)
}

func (t *Transformer) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	if len(image) == 0 {
		return nil, errors.New("no image to process")
	}
	if t.remover == nil {
		return nil, errors.New("no background removal tool is available")
	}
	return t.remover.Remove(ctx, image)
}

func (t *Transformer) generate(ctx context.Context, prompt string, image []byte) (string, error) {
	raw, err := t.reasoner.Classify(ctx, ports.ClassifyRequest{
		System: "You are a precise content transformation engine. Follow the instructions exactly.",
		User:   prompt,
		Image:  image,
	})
	if err != nil {
		return "", err
	}

	var parsed struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Output == "" {
		// Some models answer with the bare result despite the schema note.
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return "", errors.New("transformation returned an empty result")
		}
		return text, nil
	}
	return strings.TrimSpace(parsed.Output), nil
}

var _ ports.ContentTransformer = (*Transformer)(nil)
