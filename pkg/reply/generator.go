// Package reply turns an inbound message into the text the bot posts back,
// either from the configured LLM provider or from the canned message pool.
package reply

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/gliderlab/autochat/pkg/filter"
	"github.com/gliderlab/autochat/pkg/llm"
	"github.com/gliderlab/autochat/pkg/logging"
)

// Fixed replies used instead of provider output.
const (
	ErrorReply      = "Error processing the request. Please try again."
	ModerationReply = "Sorry, I can't answer this question."
)

// Source records where a reply's text came from.
type Source string

const (
	SourceAI         Source = "ai"
	SourceCanned     Source = "canned"
	SourceError      Source = "error"
	SourceModeration Source = "moderation"
)

// GeneratedReply is the text to post plus its origin.
type GeneratedReply struct {
	Text   string
	Source Source
}

// Fallback reports whether the text is one of the fixed replacement strings.
func (r GeneratedReply) Fallback() bool {
	return r.Source == SourceError || r.Source == SourceModeration
}

// CannedSource supplies canned messages.
type CannedSource interface {
	RandomMessage() string
}

// Generator produces replies. It never returns an error: every failure maps
// to a fixed reply.
type Generator struct {
	provider  llm.Provider
	canned    CannedSource
	filter    *filter.Filter
	counter   llm.TokenCounter
	maxLength int
	timeout   time.Duration
	logger    *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithProvider sets the LLM provider used when AI replies are requested.
func WithProvider(p llm.Provider) Option { return func(g *Generator) { g.provider = p } }

// WithFilter replaces the default content filter.
func WithFilter(f *filter.Filter) Option { return func(g *Generator) { g.filter = f } }

// WithMaxLength sets the trim length (default filter.DefaultMaxLength).
func WithMaxLength(n int) Option { return func(g *Generator) { g.maxLength = n } }

// WithTimeout bounds each provider call; zero disables the bound.
func WithTimeout(d time.Duration) Option { return func(g *Generator) { g.timeout = d } }

// WithTokenCounter sets the prompt token estimator used for debug logging.
func WithTokenCounter(c llm.TokenCounter) Option { return func(g *Generator) { g.counter = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(g *Generator) { g.logger = logging.OrNop(l) } }

// New returns a Generator reading canned messages from canned.
func New(canned CannedSource, opts ...Option) *Generator {
	g := &Generator{
		canned:    canned,
		filter:    filter.Default(),
		counter:   llm.TokenCounterFunc(llm.EstimateTokens),
		maxLength: filter.DefaultMaxLength,
		timeout:   llm.DefaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxLength returns the configured trim length.
func (g *Generator) MaxLength() int { return g.maxLength }

// BuildPrompt wraps the user's message in the bot instructions.
func BuildPrompt(message string, maxLength int) string {
	return fmt.Sprintf(`You are a friendly and helpful Discord bot. Please provide a short and concise response to the following message (maximum %d characters):
%s

If the message is unclear or inappropriate, respond with: "I'm sorry, I can't help with that."`, maxLength, message)
}

// Generate returns the reply for prompt. With useAI false the reply is a
// canned message; otherwise the provider is called exactly once.
func (g *Generator) Generate(ctx context.Context, prompt string, useAI bool) GeneratedReply {
	if !useAI {
		return g.Canned()
	}
	return g.fromProvider(ctx, prompt)
}

// Canned returns a trimmed canned message.
func (g *Generator) Canned() GeneratedReply {
	text := ""
	if g.canned != nil {
		text = g.canned.RandomMessage()
	}
	return GeneratedReply{Text: filter.Trim(text, g.maxLength), Source: SourceCanned}
}

func (g *Generator) fromProvider(ctx context.Context, prompt string) GeneratedReply {
	if g.provider == nil {
		g.logger.Error("AI reply requested but no provider is configured")
		return g.fixed(ErrorReply, SourceError)
	}

	full := BuildPrompt(prompt, g.maxLength)
	g.logger.Debug("requesting AI reply",
		zap.String("provider", g.provider.Name()),
		zap.Int("prompt_tokens_est", g.counter.CountTokens(full)))

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.provider.Chat(ctx, &llm.ChatRequest{
		Messages: []llm.Message{{Role: "user", Content: full}},
	})
	if err == nil {
		var text string
		if text, err = resp.FirstText(); err == nil {
			return g.screen(text)
		}
	}
	// A provider that withholds its answer (blocked prompt, no candidates)
	// gets the moderation reply; failures to reach it get the error reply.
	if errors.Is(err, llm.ErrEmptyResponse) {
		g.logger.Info("AI returned no usable answer", zap.String("provider", g.provider.Name()), zap.Error(err))
		return g.fixed(ModerationReply, SourceModeration)
	}
	g.logger.Warn("AI request failed", zap.String("provider", g.provider.Name()), zap.Error(err))
	return g.fixed(ErrorReply, SourceError)
}

// screen applies the content filter to provider text and trims what passes.
func (g *Generator) screen(text string) GeneratedReply {
	if v := g.filter.Check(text); !v.OK() {
		g.logger.Info("AI reply rejected by content filter; it will not be sent",
			zap.String("rule", string(v.Rule)),
			zap.Int("length", utf8.RuneCountInString(text)))
		return g.fixed(ModerationReply, SourceModeration)
	}

	return GeneratedReply{Text: filter.Trim(text, g.maxLength), Source: SourceAI}
}

func (g *Generator) fixed(text string, src Source) GeneratedReply {
	return GeneratedReply{Text: filter.Trim(text, g.maxLength), Source: src}
}
