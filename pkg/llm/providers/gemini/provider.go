// Package gemini provides a Gemini provider built on the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/gliderlab/autochat/pkg/llm"
)

// Provider implements llm.Provider through genai.Client.
type Provider struct {
	config llm.Config
	client *genai.Client
}

// New creates the SDK client. BaseURL, when set, replaces the SDK's default
// endpoint; a trailing API version segment (e.g. "/v1beta") is honoured.
func New(ctx context.Context, cfg llm.Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultGoogleModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = llm.DefaultTimeout
	}
	cfg.Type = llm.ProviderGenAI

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		base, version := splitVersion(cfg.BaseURL)
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: base, APIVersion: version}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Provider{config: cfg, client: client}, nil
}

// splitVersion turns "https://host/v1beta" into ("https://host/", "v1beta").
func splitVersion(raw string) (string, string) {
	raw = strings.TrimRight(raw, "/")
	i := strings.LastIndex(raw, "/")
	if i < 0 {
		return raw + "/", ""
	}
	last := raw[i+1:]
	if strings.HasPrefix(last, "v1") {
		return raw[:i+1], last
	}
	return raw + "/", ""
}

func (p *Provider) Name() string           { return "genai" }
func (p *Provider) Type() llm.ProviderType { return llm.ProviderGenAI }
func (p *Provider) GetConfig() llm.Config  { return p.config }

// Chat implements llm.Provider.Chat with a single GenerateContent call.
func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	var gc *genai.GenerateContentConfig
	if req.Temperature != 0 || req.MaxTokens != 0 {
		gc = &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
		if req.Temperature != 0 {
			gc.Temperature = genai.Ptr(float32(req.Temperature))
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, gc)
	if err != nil {
		return nil, fmt.Errorf("genai generate content: %w", err)
	}

	out := &llm.ChatResponse{Model: model}
	if resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	for i, c := range resp.Candidates {
		if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
			continue
		}
		out.Choices = append(out.Choices, llm.Choice{
			Index:        i,
			Message:      llm.Message{Role: "assistant", Content: c.Content.Parts[0].Text},
			FinishReason: string(c.FinishReason),
		})
	}
	if len(out.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	return out, nil
}

var _ llm.Provider = (*Provider)(nil)
