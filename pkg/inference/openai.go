package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

const (
	GroqBaseURL     = "https://api.groq.com/openai/v1"
	GrokBaseURL     = "https://api.x.ai/v1"
	MoonshotBaseURL = "https://api.moonshot.ai/v1"
	LocalBaseURL    = "http://localhost:1234/v1"
)

// OpenAIInferencer implements Inferencer against any OpenAI-compatible
// chat completion endpoint.
type OpenAIInferencer struct {
	client *openai.Client
	apiKey string
	model  string
	name   string
}

// NewOpenAIInferencer creates an inferencer for api.openai.com.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	return newCompatible("openai", "", apiKey, cmp.Or(model, "gpt-4o-mini"))
}

// NewGroqInferencer creates an inferencer for Groq's OpenAI-compatible API.
func NewGroqInferencer(apiKey string, model string) *OpenAIInferencer {
	return newCompatible("groq", GroqBaseURL, apiKey, cmp.Or(model, "llama3-8b-8192"))
}

// NewGrokInferencer creates an inferencer for xAI.
func NewGrokInferencer(apiKey string, model string) *OpenAIInferencer {
	return newCompatible("grok", GrokBaseURL, apiKey, cmp.Or(model, "grok-4-fast-reasoning"))
}

// NewMoonshotInferencer creates an inferencer for Moonshot AI.
func NewMoonshotInferencer(apiKey string, model string) *OpenAIInferencer {
	return newCompatible("moonshot", MoonshotBaseURL, apiKey, cmp.Or(model, "kimi-k2-5"))
}

// NewLocalInferencer targets a local OpenAI-compatible server such as LM Studio.
func NewLocalInferencer(baseURL string, model string) *OpenAIInferencer {
	return newCompatible("local", cmp.Or(baseURL, LocalBaseURL), "local", model)
}

func newCompatible(name, baseURL, apiKey, model string) *OpenAIInferencer {
	o := &OpenAIInferencer{apiKey: apiKey, model: model, name: name}
	o.ChangeBaseURL(baseURL)
	return o
}

// ChangeBaseURL points the client at another endpoint. An empty URL uses the SDK default.
func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	opts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		// one attempt per Infer call; retries are decided by the caller
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	o.client = &client
}

func (o *OpenAIInferencer) SetModel(model string) {
	o.model = model
}

func (o *OpenAIInferencer) Model() string { return o.model }

// Infer sends text to the chat completion endpoint and returns the output.
func (o *OpenAIInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	var p openai.ChatCompletionNewParams
	if params != nil {
		p = *params
	}
	p.Model = cmp.Or(p.Model, o.model)
	p.Messages = []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Role: "system",
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.Opt[string]{Value: system},
				},
			}},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Role: "user",
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.Opt[string]{Value: user},
				},
			},
		},
	}

	p.Temperature = openai.Float(temperature(&p))

	resp, err := o.client.Chat.Completions.New(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s inference error: %w", o.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}
