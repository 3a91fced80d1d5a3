package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// Embedder produces vectors for memory similarity search.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder reuses the provider's client for embeddings.
func (p *Provider) NewEmbedder(model string) *Embedder {
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &Embedder{client: p.client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}
