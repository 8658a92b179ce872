// Package llm provides the text generation provider abstraction used by the
// reply generator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	// ProviderGoogle talks to the Gemini generateContent REST endpoint directly.
	ProviderGoogle ProviderType = "google"
	// ProviderGenAI talks to Gemini through the google.golang.org/genai SDK.
	ProviderGenAI ProviderType = "genai"
	// ProviderOpenAI talks to any OpenAI-compatible chat completions API.
	ProviderOpenAI ProviderType = "openai"
)

// ParseProviderType normalizes a provider name from configuration.
func ParseProviderType(s string) (ProviderType, error) {
	switch t := ProviderType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", ProviderGoogle, "gemini":
		return ProviderGoogle, nil
	case ProviderGenAI, ProviderOpenAI:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a generation request
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse represents a generation response. Choices mirror the
// provider's candidates in order.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FirstText returns the text of the first choice, or ErrEmptyResponse.
func (r *ChatResponse) FirstText() (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return r.Choices[0].Message.Content, nil
}

// Provider defines the interface for LLM providers
type Provider interface {
	Name() string
	Type() ProviderType
	GetConfig() Config
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

var (
	// ErrEmptyResponse is returned when the provider answered without any candidate.
	ErrEmptyResponse = errors.New("llm: response has no candidates")
	// ErrUnknownProvider is returned for unsupported provider names.
	ErrUnknownProvider = errors.New("llm: unknown provider")
	// ErrMissingAPIKey is returned when a provider is built without credentials.
	ErrMissingAPIKey = errors.New("llm: missing api key")
)

// Config holds provider configuration
type Config struct {
	Type    ProviderType  `json:"type"`
	APIKey  string        `json:"-"`
	BaseURL string        `json:"baseUrl,omitempty"`
	Model   string        `json:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Defaults per provider.
const (
	DefaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGoogleModel   = "gemini-2.0-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultTimeout       = 30 * time.Second
)

// APIError is returned for non-2xx provider responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}
