// Package google provides the Gemini generateContent REST provider.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gliderlab/autochat/pkg/llm"
)

// Provider implements llm.Provider for Google Gemini over plain HTTP. The API
// key travels as the "key" query parameter.
type Provider struct {
	config llm.Config
	client *http.Client
}

// New creates a new Google provider
func New(cfg llm.Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = llm.DefaultGoogleBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultGoogleModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = llm.DefaultTimeout
	}
	cfg.Type = llm.ProviderGoogle
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Name() string           { return "google" }
func (p *Provider) Type() llm.ProviderType { return llm.ProviderGoogle }
func (p *Provider) GetConfig() llm.Config  { return p.config }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Chat implements llm.Provider.Chat. User turns are sent without a role so a
// single prompt produces the minimal {contents:[{parts:[{text}]}]} body.
func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	body := generateRequest{Contents: make([]content, 0, len(req.Messages))}
	for _, m := range req.Messages {
		c := content{Parts: []part{{Text: m.Content}}}
		if m.Role == "assistant" {
			c.Role = "model"
		}
		body.Contents = append(body.Contents, c)
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		body.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	httpReq, err := p.buildRequest(ctx, "/models/"+model+":generateContent", body)
	if err != nil {
		return nil, err
	}

	raw, err := p.doRequest(httpReq)
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode generateContent response: %w", err)
	}

	out := &llm.ChatResponse{
		Model: model,
		Usage: llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}
	for i, c := range resp.Candidates {
		if len(c.Content.Parts) == 0 {
			continue
		}
		out.Choices = append(out.Choices, llm.Choice{
			Index:        i,
			Message:      llm.Message{Role: "assistant", Content: c.Content.Parts[0].Text},
			FinishReason: c.FinishReason,
		})
	}
	if len(out.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	return out, nil
}

func (p *Provider) buildRequest(ctx context.Context, endpoint string, body any) (*http.Request, error) {
	u, err := url.Parse(p.config.BaseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if p.config.APIKey != "" {
		q := u.Query()
		q.Set("key", p.config.APIKey)
		u.RawQuery = q.Encode()
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doRequest performs exactly one attempt; callers decide what a failure means.
func (p *Provider) doRequest(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, redactKey(err, p.config.APIKey)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &llm.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

var _ llm.Provider = (*Provider)(nil)
