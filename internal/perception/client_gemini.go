package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"timekeeper/internal/logging"
)

// =============================================================================
// GEMINI EXTRACTOR
// =============================================================================

// DefaultGeminiModel is used when GeminiConfig.Model is empty.
const DefaultGeminiModel = "gemini-2.0-flash"

// slowExtraction is the latency above which a request is logged as a warning.
const slowExtraction = 10 * time.Second

// GeminiConfig holds connection settings for the Gemini API.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, tests point this at a local server
	Timeout time.Duration
}

// GeminiExtractor implements Extractor on top of google.golang.org/genai.
type GeminiExtractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiExtractor creates an extractor for the Gemini API.
func NewGeminiExtractor(ctx context.Context, cfg GeminiConfig) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model, timeout: cfg.Timeout}, nil
}

// Model returns the model name requests are sent to.
func (g *GeminiExtractor) Model() string { return g.model }

// ExtractWorkDescription sends prompt as a single user turn and returns the
// trimmed text of the reply.
func (g *GeminiExtractor) ExtractWorkDescription(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	logging.API("gemini request: model=%s prompt_chars=%d", g.model, len(prompt))
	timer := logging.StartTimer(logging.CategoryAPI, "gemini.GenerateContent")
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	timer.StopWithThreshold(slowExtraction)
	if err != nil {
		logging.APIError("gemini request failed: model=%s err=%v", g.model, err)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	logging.APIDebug("gemini reply: model=%s chars=%d", g.model, len(text))
	return text, nil
}
