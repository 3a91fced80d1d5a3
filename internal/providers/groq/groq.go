// Package groq talks to the Groq REST API: Whisper batch transcription and
// OpenAI-compatible chat completions for intent classification.
package groq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"hotclip/internal/audio"
	"hotclip/internal/domain"
	"hotclip/internal/ports"
	"hotclip/internal/providers/transport"
)

// Config controls the Groq endpoints and models.
type Config struct {
	APIKey       string
	APIBaseURL   string
	Model        string
	WhisperModel string
	RetryWait    time.Duration
}

// Provider implements ports.Transcriber and ports.Reasoner.
type Provider struct {
	cfg    Config
	client *http.Client
}

func NewProvider(cfg Config) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = "whisper-large-v3-turbo"
	}
	return &Provider{cfg: cfg, client: &http.Client{}}
}

// Transcribe uploads the sealed utterance as a WAV file and returns the
// transcript text.
func (p *Provider) Transcribe(ctx context.Context, buf *domain.UtteranceBuffer) (string, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return "", errors.New("GROQ_API_KEY is not configured")
	}

	wav := audio.EncodeWAV(buf.Samples(), buf.SampleRate(), 1)

	var text string
	err := transport.Retry(ctx, p.cfg.RetryWait, func() error {
		out, err := p.transcribeOnce(ctx, wav)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}

func (p *Provider) transcribeOnce(ctx context.Context, wav []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wav); err != nil {
		return "", err
	}
	_ = writer.WriteField("model", p.cfg.WhisperModel)
	_ = writer.WriteField("language", "en")
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBaseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := p.do(req)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unexpected transcription response: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify sends one classification request and returns the raw JSON action
// payload. Malformed-but-delivered payloads are the caller's concern; only
// delivery failures are errors here.
func (p *Provider) Classify(ctx context.Context, creq ports.ClassifyRequest) ([]byte, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, errors.New("GROQ_API_KEY is not configured")
	}

	messages := []chatMessage{
		{Role: "system", Content: creq.System},
	}
	if len(creq.Image) > 0 {
		messages = append(messages, chatMessage{Role: "user", Content: []map[string]any{
			{"type": "text", "text": creq.User},
			{"type": "image_url", "image_url": map[string]string{
				"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(creq.Image),
			}},
		}})
	} else {
		messages = append(messages, chatMessage{Role: "user", Content: creq.User})
	}

	payload, err := json.Marshal(chatRequest{
		Model:          p.cfg.Model,
		Messages:       messages,
		Temperature:    0.1,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = transport.Retry(ctx, p.cfg.RetryWait, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBaseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		respBody, err := p.do(req)
		if err != nil {
			return err
		}

		var parsed chatResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("unexpected chat response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return errors.New("chat response had no choices")
		}
		raw = []byte(parsed.Choices[0].Message.Content)
		return nil
	})
	return raw, err
}

func (p *Provider) do(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

var (
	_ ports.Transcriber = (*Provider)(nil)
	_ ports.Reasoner    = (*Provider)(nil)
)
