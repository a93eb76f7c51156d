package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"EnvNewsPipeline/internal/config"
	"EnvNewsPipeline/internal/ports"
)

const systemPrompt = "You are an assistant that writes compact news digests."

const promptTemplate = `Summarize this environmental news article in 2-3 sentences, focusing on the key environmental impact and significance.

Headline: %s

%s`

// Summarizer implements ports.Summarizer backed by OpenAI-compatible chat APIs.
type Summarizer struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer builds a client from configuration.
func NewSummarizer(cfg config.ChatGPTConfig) *Summarizer {
	return &Summarizer{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Summarize posts the article text as a chat completion request and returns
// the model's digest.
func (s *Summarizer) Summarize(ctx context.Context, headline, body string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("summarizer is nil")
	}
	if s.apiKey == "" || s.endpoint == "" || s.model == "" {
		return "", fmt.Errorf("summarizer misconfigured")
	}

	payload, err := json.Marshal(map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": fmt.Sprintf(promptTemplate, headline, body)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	summary := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("completion returned empty content")
	}

	return summary, nil
}
