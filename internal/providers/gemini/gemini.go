// Package gemini backs the reasoner port with Google's Gemini API, which also
// covers vision requests when a screenshot rides along with the command.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"hotclip/internal/ports"
	"hotclip/internal/providers/transport"
)

// Config controls the Gemini model selection.
type Config struct {
	APIKey    string
	Model     string
	RetryWait time.Duration
}

// Provider implements ports.Reasoner.
type Provider struct {
	cfg    Config
	client *genai.Client
}

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Classify sends the command (plus image, if any) and returns the raw JSON
// action payload from the model.
func (p *Provider) Classify(ctx context.Context, creq ports.ClassifyRequest) ([]byte, error) {
	parts := []*genai.Part{genai.NewPartFromText(creq.User)}
	if len(creq.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(creq.Image, "image/png"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(creq.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.1),
	}

	var raw []byte
	err := transport.Retry(ctx, p.cfg.RetryWait, func() error {
		result, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, contents, config)
		if err != nil {
			return err
		}
		text := result.Text()
		if strings.TrimSpace(text) == "" {
			return errors.New("gemini returned an empty response")
		}
		raw = []byte(text)
		return nil
	})
	return raw, err
}

var _ ports.Reasoner = (*Provider)(nil)
