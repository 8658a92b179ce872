package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gliderlab/autochat/pkg/llm"
)

func TestNewByType(t *testing.T) {
	tests := []struct {
		providerType llm.ProviderType
		expected     llm.ProviderType
	}{
		{"", llm.ProviderGoogle},
		{"gemini", llm.ProviderGoogle},
		{llm.ProviderGoogle, llm.ProviderGoogle},
		{llm.ProviderGenAI, llm.ProviderGenAI},
		{llm.ProviderOpenAI, llm.ProviderOpenAI},
	}

	for _, tt := range tests {
		p, err := New(context.Background(), llm.Config{Type: tt.providerType, APIKey: "key"})
		require.NoError(t, err, tt.providerType)
		assert.Equal(t, tt.expected, p.Type())
	}
}

func TestNewMissingKey(t *testing.T) {
	for _, pt := range []llm.ProviderType{llm.ProviderGoogle, llm.ProviderGenAI, llm.ProviderOpenAI} {
		_, err := New(context.Background(), llm.Config{Type: pt})
		assert.ErrorIs(t, err, llm.ErrMissingAPIKey, pt)
	}
}

func TestNewUnknown(t *testing.T) {
	_, err := New(context.Background(), llm.Config{Type: "bedrock", APIKey: "key"})
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}
