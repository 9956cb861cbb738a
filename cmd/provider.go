package main

import (
	"context"
	"fmt"
	"strings"

	"interplay/pkg/config"
	"interplay/pkg/inference"
)

// newInferencer builds the completion backend named by cfg. With no name the
// first provider holding an API key wins, falling back to a local
// OpenAI-compatible server.
func newInferencer(ctx context.Context, cfg config.ProviderConfig) (inference.Inferencer, string, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = detectProvider(cfg)
	}

	switch name {
	case "groq":
		return withBaseURL(inference.NewGroqInferencer(cfg.GroqAPIKey, cfg.Model), cfg.BaseURL), name, nil
	case "openai":
		return withBaseURL(inference.NewOpenAIInferencer(cfg.OpenAIAPIKey, cfg.Model), cfg.BaseURL), name, nil
	case "grok":
		return withBaseURL(inference.NewGrokInferencer(cfg.GrokAPIKey, cfg.Model), cfg.BaseURL), name, nil
	case "moonshot":
		return withBaseURL(inference.NewMoonshotInferencer(cfg.MoonshotAPIKey, cfg.Model), cfg.BaseURL), name, nil
	case "gemini":
		inf, err := inference.NewGeminiInferencer(ctx, cfg.GeminiAPIKey, cfg.Model)
		return inf, name, err
	case "ollama":
		inf, err := inference.NewOllamaInferencer(cfg.OllamaHost, cfg.Model)
		return inf, name, err
	case "local":
		return inference.NewLocalInferencer(cfg.BaseURL, cfg.Model), name, nil
	default:
		return nil, name, fmt.Errorf("unknown provider %q", name)
	}
}

func detectProvider(cfg config.ProviderConfig) string {
	switch {
	case cfg.GroqAPIKey != "":
		return "groq"
	case cfg.OpenAIAPIKey != "":
		return "openai"
	case cfg.GrokAPIKey != "":
		return "grok"
	case cfg.MoonshotAPIKey != "":
		return "moonshot"
	case cfg.GeminiAPIKey != "":
		return "gemini"
	default:
		return "local"
	}
}

func withBaseURL(o *inference.OpenAIInferencer, baseURL string) *inference.OpenAIInferencer {
	if baseURL != "" {
		o.ChangeBaseURL(baseURL)
	}
	return o
}
