package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"EnvNewsPipeline/internal/config"
)

func newTestSummarizer(server *httptest.Server) *Summarizer {
	s := NewSummarizer(config.ChatGPTConfig{
		Endpoint: server.URL,
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	})
	s.httpClient = server.Client()
	return s
}

func TestSummarizeSendsPromptAndParsesChoice(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A concise digest.  "}}]}`))
	}))
	defer server.Close()

	summary, err := newTestSummarizer(server).Summarize(context.Background(),
		"Arctic ice at record low", "Body text about sea ice decline.")
	require.NoError(t, err)
	require.Equal(t, "A concise digest.", summary)

	require.Equal(t, "gpt-4o-mini", gotBody["model"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	user, ok := messages[1].(map[string]any)
	require.True(t, ok)
	content, _ := user["content"].(string)
	require.True(t, strings.Contains(content, "2-3 sentences"))
	require.True(t, strings.Contains(content, "Arctic ice at record low"))
	require.True(t, strings.Contains(content, "Body text about sea ice decline."))
}

func TestSummarizeEmptyContentIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer server.Close()

	_, err := newTestSummarizer(server).Summarize(context.Background(), "headline", "body")
	require.Error(t, err)
}

func TestSummarizeNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer server.Close()

	_, err := newTestSummarizer(server).Summarize(context.Background(), "headline", "body")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestSummarizeMisconfigured(t *testing.T) {
	t.Parallel()

	s := NewSummarizer(config.ChatGPTConfig{Endpoint: "https://api.openai.com/v1/chat/completions"})
	_, err := s.Summarize(context.Background(), "headline", "body")
	require.Error(t, err)
}
