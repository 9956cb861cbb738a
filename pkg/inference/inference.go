package inference

import (
	"context"
	"math"

	"github.com/openai/openai-go/v3"
)

// DefaultTemperature is used when the caller leaves Temperature unset.
const DefaultTemperature = 0.2

// Inferencer runs a single completion. Implementations make exactly one
// attempt per call; callers own any retry policy.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}

// temperature returns the requested temperature, keeping an explicit 0.
func temperature(p *openai.ChatCompletionNewParams) float64 {
	if p.Temperature.Valid() {
		return p.Temperature.Value
	}
	return DefaultTemperature
}

// maxTokens32 returns the completion cap clamped to int32, or def when unset.
func maxTokens32(p *openai.ChatCompletionNewParams, def int32) int32 {
	if !p.MaxCompletionTokens.Valid() || p.MaxCompletionTokens.Value <= 0 {
		return def
	}
	return int32(min(p.MaxCompletionTokens.Value, math.MaxInt32))
}
