package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interplay/pkg/config"
	"interplay/pkg/inference"
)

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		cfg  config.ProviderConfig
		want string
	}{
		{config.ProviderConfig{}, "local"},
		{config.ProviderConfig{GeminiAPIKey: "g"}, "gemini"},
		{config.ProviderConfig{GrokAPIKey: "x", GeminiAPIKey: "g"}, "grok"},
		{config.ProviderConfig{OpenAIAPIKey: "o", MoonshotAPIKey: "m"}, "openai"},
		{config.ProviderConfig{GroqAPIKey: "q", OpenAIAPIKey: "o"}, "groq"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectProvider(tt.cfg))
	}
}

func TestNewInferencer(t *testing.T) {
	inf, name, err := newInferencer(context.Background(), config.ProviderConfig{GroqAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "groq", name)
	require.IsType(t, &inference.OpenAIInferencer{}, inf)
	assert.Equal(t, "llama3-8b-8192", inf.(*inference.OpenAIInferencer).Model())

	inf, name, err = newInferencer(context.Background(), config.ProviderConfig{Name: " Ollama ", Model: "qwen2.5"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", name)
	assert.Equal(t, "qwen2.5", inf.(*inference.OllamaInferencer).Model())

	_, _, err = newInferencer(context.Background(), config.ProviderConfig{Name: "claude"})
	assert.ErrorContains(t, err, `unknown provider "claude"`)
}
