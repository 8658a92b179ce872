// Package factory builds the configured LLM provider.
package factory

import (
	"context"
	"fmt"

	"github.com/gliderlab/autochat/pkg/llm"
	"github.com/gliderlab/autochat/pkg/llm/providers/gemini"
	"github.com/gliderlab/autochat/pkg/llm/providers/google"
	"github.com/gliderlab/autochat/pkg/llm/providers/openai"
)

// New returns the provider named by cfg.Type. An empty type selects the
// Gemini REST provider.
func New(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
	t, err := llm.ParseProviderType(string(cfg.Type))
	if err != nil {
		return nil, err
	}
	cfg.Type = t

	switch t {
	case llm.ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("google provider: %w", llm.ErrMissingAPIKey)
		}
		return google.New(cfg), nil
	case llm.ProviderGenAI:
		p, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("genai provider: %w", err)
		}
		return p, nil
	case llm.ProviderOpenAI:
		p, err := openai.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", llm.ErrUnknownProvider, cfg.Type)
}
