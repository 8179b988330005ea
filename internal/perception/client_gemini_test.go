package perception

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timekeeper/internal/config"
)

func geminiServer(t *testing.T, status int, reply string, gotBody *string, gotPath *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if gotBody != nil {
			*gotBody = string(b)
		}
		if gotPath != nil {
			*gotPath = r.URL.Path
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": reply}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiExtractor_ExtractWorkDescription(t *testing.T) {
	var body, path string
	srv := geminiServer(t, http.StatusOK, "  Worked on API integration\n", &body, &path)

	ex, err := NewGeminiExtractor(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, ex.Model())

	prompt := WorkPrompt("Present today, worked on API integration")
	out, err := ex.ExtractWorkDescription(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, "Worked on API integration", out)
	assert.Contains(t, path, DefaultGeminiModel+":generateContent")
	assert.True(t, strings.Contains(body, "worked on API integration"), "prompt should be sent in the body")
}

func TestGeminiExtractor_ServerError(t *testing.T) {
	srv := geminiServer(t, http.StatusInternalServerError, "", nil, nil)

	ex, err := NewGeminiExtractor(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = ex.ExtractWorkDescription(context.Background(), "p")
	assert.Error(t, err)
}

func TestNewGeminiExtractor_RequiresKey(t *testing.T) {
	_, err := NewGeminiExtractor(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}

func TestNewExtractorFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.LLM.APIKey = ""
	_, err := NewExtractorFromConfig(context.Background(), cfg)
	assert.Error(t, err)

	cfg.LLM.APIKey = "k"
	ex, err := NewExtractorFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &GeminiExtractor{}, ex)

	cfg.LLM.Provider = "openai"
	_, err = NewExtractorFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}
