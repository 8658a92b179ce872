// Package openai provides an OpenAI-compatible chat completions provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gliderlab/autochat/pkg/llm"
)

// Provider implements llm.Provider for OpenAI
type Provider struct {
	config llm.Config
	client *openai.Client
}

// New creates a new OpenAI provider. BaseURL may point at any compatible
// server; it defaults to the public API.
func New(cfg llm.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultOpenAIModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = llm.DefaultTimeout
	}
	cfg.Type = llm.ProviderOpenAI

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		config: cfg,
		client: openai.NewClientWithConfig(oc),
	}, nil
}

func (p *Provider) Name() string           { return "openai" }
func (p *Provider) Type() llm.ProviderType { return llm.ProviderOpenAI }
func (p *Provider) GetConfig() llm.Config  { return p.config }

// Chat implements llm.Provider.Chat
func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		case "system":
			role = openai.ChatMessageRoleSystem
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &llm.APIError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	out := &llm.ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, llm.Choice{
			Index:        c.Index,
			Message:      llm.Message{Role: "assistant", Content: c.Message.Content},
			FinishReason: string(c.FinishReason),
		})
	}
	if len(out.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	return out, nil
}

var _ llm.Provider = (*Provider)(nil)
