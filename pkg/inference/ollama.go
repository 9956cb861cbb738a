package inference

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"github.com/openai/openai-go/v3"
)

// OllamaInferencer talks to a local Ollama daemon.
type OllamaInferencer struct {
	client *api.Client
	model  string
}

// NewOllamaInferencer connects to host, or to OLLAMA_HOST when host is empty.
func NewOllamaInferencer(host string, model string) (*OllamaInferencer, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = u
	}
	return &OllamaInferencer{
		client: api.NewClient(hostURL, http.DefaultClient),
		model:  cmp.Or(model, "llama3.1"),
	}, nil
}

func (o *OllamaInferencer) Model() string { return o.model }

// Infer runs a non-streaming chat request in JSON mode.
func (o *OllamaInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	if params == nil {
		params = new(openai.ChatCompletionNewParams)
	}
	stream := false
	options := map[string]any{
		"temperature": temperature(params),
	}
	if params.MaxCompletionTokens.Value > 0 {
		options["num_predict"] = params.MaxCompletionTokens.Value
	}

	req := &api.ChatRequest{
		Model: cmp.Or(params.Model, o.model),
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: options,
	}

	var out strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		_, err := out.WriteString(resp.Message.Content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("ollama inference error: %w", err)
	}
	if out.Len() == 0 {
		return "", errors.New("empty completion content")
	}
	return out.String(), nil
}
