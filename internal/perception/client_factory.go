package perception

import (
	"context"
	"fmt"

	"timekeeper/internal/config"
)

// NewExtractorFromConfig builds the Extractor named by cfg.LLM.Provider.
func NewExtractorFromConfig(ctx context.Context, c *config.Config) (Extractor, error) {
	cfg := c.LLM
	switch cfg.Provider {
	case "", "gemini":
		if !cfg.HasCredentials() {
			return nil, fmt.Errorf("no API key for Gemini: set GEMINI_API_KEY or llm.api_key")
		}
		return NewGeminiExtractor(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: c.GetLLMTimeout(),
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
