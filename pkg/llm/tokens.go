package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many tokens a prompt will consume.
type TokenCounter interface {
	CountTokens(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

func (f TokenCounterFunc) CountTokens(text string) int { return f(text) }

// EstimateTokens is the rough fallback used when no BPE encoding is available.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// BPECounter counts tokens with the cl100k_base encoding. The encoding is
// loaded lazily on first use; when loading fails every call falls back to
// EstimateTokens.
type BPECounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewBPECounter returns a lazily initialized counter.
func NewBPECounter() *BPECounter {
	return &BPECounter{}
}

func (c *BPECounter) load() {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	})
}

// Err reports the encoding load error, if any. It triggers loading.
func (c *BPECounter) Err() error {
	c.load()
	return c.err
}

func (c *BPECounter) CountTokens(text string) int {
	c.load()
	if c.enc == nil {
		return EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}
