package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interplay/pkg/schema"
)

type call struct {
	system string
	user   string
	params openai.ChatCompletionNewParams
}

// stubInferencer answers each call through reply, recording what it was sent.
type stubInferencer struct {
	mu    sync.Mutex
	calls []call
	reply func(n int, user string) (string, error)
}

func (s *stubInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{system: system, user: user, params: *params})
	n := len(s.calls)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.reply(n, user)
}

func (s *stubInferencer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testConfig(size int) Config {
	cfg := DefaultConfig()
	cfg.ChunkSize = size
	cfg.Backoff = 0
	return cfg
}

// bookText builds a 9000 rune document whose three 4000 rune chunks are
// recognisable by their filler letter.
func bookText() string {
	return strings.Repeat("a", 4000) + strings.Repeat("b", 4000) + strings.Repeat("c", 1000)
}

func byChunk(replies map[string]string) func(int, string) (string, error) {
	return func(_ int, user string) (string, error) {
		for marker, reply := range replies {
			if strings.Contains(user, marker) {
				return reply, nil
			}
		}
		return `{"characters":[],"interactions":[]}`, nil
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(map[string]string{
		"aaaa": `{"characters":["Elizabeth","Darcy"],"interactions":[{"from":"Elizabeth","to":"Darcy","count":1,"quotes":["You are mistaken"],"sentiment":"negative","positions":[0.25]}]}`,
		"bbbb": "```json\n{\"characters\":[\"Elizabeth\",\"Jane\"],\"interactions\":[]}\n```",
		"cccc": `Here you go: {"characters":["Darcy"],"interactions":[{"from":"Elizabeth","to":"Darcy","count":2,"quotes":["a","b","c","d","e"],"sentiment":"positive","positions":[0.5]}]}`,
	})}
	a := New(stub, testConfig(4000))

	res, err := a.Analyze(context.Background(), bookText())
	require.NoError(t, err)
	assert.Equal(t, 3, stub.count())

	assert.ElementsMatch(t, []string{"Elizabeth", "Darcy", "Jane"}, res.Characters)
	require.Len(t, res.Interactions, 2, "same pair in two chunks stays two entries")

	first, last := res.Interactions[0], res.Interactions[1]
	assert.Equal(t, schema.Negative, first.Sentiment)
	assert.InDelta(t, 1000.0/9000, first.Positions[0], 1e-12)

	assert.Equal(t, "Elizabeth", last.From)
	assert.Equal(t, "Darcy", last.To)
	assert.Equal(t, 2, last.Count)
	assert.Equal(t, []string{"a", "b", "c"}, last.Quotes)
	assert.Equal(t, schema.Positive, last.Sentiment)
	require.Len(t, last.Positions, 1)
	assert.InDelta(t, 8500.0/9000, last.Positions[0], 1e-12)
}

func TestAnalyze_RequestParams(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(nil)}
	cfg := testConfig(100)
	cfg.Model = "llama3-8b-8192"
	cfg.Temperature = 0.2
	cfg.MaxTokens = 512

	_, err := New(stub, cfg).Analyze(context.Background(), "Some short text.")
	require.NoError(t, err)
	require.Equal(t, 1, stub.count())

	c := stub.calls[0]
	assert.Equal(t, SystemPrompt(), c.system)
	assert.Equal(t, BuildPrompt("Some short text."), c.user)
	assert.Equal(t, "llama3-8b-8192", c.params.Model)
	assert.InDelta(t, 0.2, c.params.Temperature.Value, 1e-12)
	assert.Equal(t, int64(512), c.params.MaxCompletionTokens.Value)
	assert.Nil(t, c.params.ResponseFormat.OfJSONSchema)
}

func TestAnalyze_ZeroTemperatureIsSent(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(nil)}
	cfg := testConfig(100)
	cfg.Temperature = 0

	_, err := New(stub, cfg).Analyze(context.Background(), "Some short text.")
	require.NoError(t, err)

	c := stub.calls[0]
	assert.True(t, c.params.Temperature.Valid())
	assert.Zero(t, c.params.Temperature.Value)
}

func TestAnalyze_StructuredOutput(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(nil)}
	cfg := testConfig(100)
	cfg.StructuredOutput = true

	_, err := New(stub, cfg).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.NotNil(t, stub.calls[0].params.ResponseFormat.OfJSONSchema)
}

func TestAnalyze_RetryExhaustion(t *testing.T) {
	stub := &stubInferencer{reply: func(int, string) (string, error) {
		return "I'm afraid I can only describe the characters in prose.", nil
	}}
	a := New(stub, testConfig(4000))

	res, err := a.Analyze(context.Background(), bookText())
	require.Error(t, err)
	assert.Nil(t, res)

	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, KindExtractionFailure, aerr.Kind)
	assert.Equal(t, 0, aerr.Chunk)
	assert.Equal(t, 3, aerr.Attempts)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "no JSON object found", perr.Reason)

	require.Equal(t, 3, stub.count(), "exactly MaxAttempts calls")
	for _, c := range stub.calls {
		assert.Contains(t, c.user, "aaaa", "no calls for later chunks")
		assert.NotContains(t, c.user, "bbbb")
	}
}

func TestAnalyze_RetryExhaustionLaterChunk(t *testing.T) {
	stub := &stubInferencer{reply: func(_ int, user string) (string, error) {
		if strings.Contains(user, "bbbb") {
			return `{"characters": [`, nil
		}
		return `{"characters":["Jane"],"interactions":[]}`, nil
	}}
	cfg := testConfig(4000)
	cfg.MaxAttempts = 2

	_, err := New(stub, cfg).Analyze(context.Background(), bookText())
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 1, aerr.Chunk)
	assert.Equal(t, 2, aerr.Attempts)
	assert.Equal(t, 3, stub.count(), "one call for chunk 1, two for chunk 2, none for chunk 3")
	assert.Contains(t, err.Error(), "chunk 2 after 2 attempts")
}

func TestAnalyze_RetryRecovers(t *testing.T) {
	stub := &stubInferencer{reply: func(n int, _ string) (string, error) {
		if n == 1 {
			return "Sorry, here is some prose instead.", nil
		}
		return `{"characters":["Jane"],"interactions":[]}`, nil
	}}

	res, err := New(stub, testConfig(4000)).Analyze(context.Background(), "Jane walked to Netherfield.")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.count())
	assert.Equal(t, []string{"Jane"}, res.Characters)
}

func TestAnalyze_ProviderErrorsConsumeAttempts(t *testing.T) {
	boom := errors.New("429 rate limited")
	stub := &stubInferencer{reply: func(int, string) (string, error) { return "", boom }}

	_, err := New(stub, testConfig(4000)).Analyze(context.Background(), bookText())
	require.Error(t, err)
	assert.Equal(t, 3, stub.count())
	assert.Equal(t, KindProviderFailure, KindOf(err))
	assert.ErrorIs(t, err, boom)

	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestAnalyze_MixedFailuresReportExtraction(t *testing.T) {
	stub := &stubInferencer{reply: func(n int, _ string) (string, error) {
		if n == 1 {
			return "not json", nil
		}
		return "", errors.New("connection reset")
	}}

	_, err := New(stub, testConfig(4000)).Analyze(context.Background(), "text")
	assert.Equal(t, KindExtractionFailure, KindOf(err))
	assert.Equal(t, 3, stub.count())
}

func TestAnalyze_ProviderErrorThenSuccess(t *testing.T) {
	stub := &stubInferencer{reply: func(n int, _ string) (string, error) {
		if n < 3 {
			return "", errors.New("503 unavailable")
		}
		return `{"characters":["Mary"]}`, nil
	}}

	res, err := New(stub, testConfig(4000)).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mary"}, res.Characters)
	assert.Empty(t, res.Interactions)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(nil)}
	for _, content := range []string{"", "  \n\t"} {
		_, err := New(stub, testConfig(4000)).Analyze(context.Background(), content)
		assert.Equal(t, KindEmptyInput, KindOf(err))
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Zero(t, stub.count())
}

func TestAnalyze_InvalidChunkSize(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(nil)}
	_, err := New(stub, testConfig(0)).Analyze(context.Background(), "text")
	assert.ErrorIs(t, err, ErrInvalidChunkSize)
	assert.Zero(t, stub.count())
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubInferencer{reply: func(int, string) (string, error) {
		cancel()
		return "", context.Canceled
	}}

	_, err := New(stub, testConfig(4000)).Analyze(ctx, bookText())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, KindOf(err))
	assert.Equal(t, 1, stub.count())
}

func TestAnalyze_Progress(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(map[string]string{
		"aaaa": `{"characters":["A"],"interactions":[{"from":"A","to":"B"}]}`,
	})}

	var got []Progress
	_, err := New(stub, testConfig(4000)).AnalyzeWithProgress(context.Background(), bookText(), func(p Progress) {
		got = append(got, p)
	})
	require.NoError(t, err)
	assert.Equal(t, []Progress{
		{Chunk: 1, Total: 3, Attempts: 1, Characters: 1, Interactions: 1},
		{Chunk: 2, Total: 3, Attempts: 1, Characters: 1, Interactions: 1},
		{Chunk: 3, Total: 3, Attempts: 1, Characters: 1, Interactions: 1},
	}, got)
}

func TestAnalyze_ConcurrentKeepsChunkOrder(t *testing.T) {
	replies := map[string]string{
		"aaaa": `{"characters":["A"],"interactions":[{"from":"A","to":"B","positions":[0]}]}`,
		"bbbb": `{"characters":["B"],"interactions":[{"from":"B","to":"C","positions":[0]}]}`,
		"cccc": `{"characters":["C"],"interactions":[{"from":"C","to":"A","positions":[0]}]}`,
	}
	seqStub := &stubInferencer{reply: byChunk(replies)}
	want, err := New(seqStub, testConfig(4000)).Analyze(context.Background(), bookText())
	require.NoError(t, err)

	parStub := &stubInferencer{reply: byChunk(replies)}
	cfg := testConfig(4000)
	cfg.Concurrency = 3
	got, err := New(parStub, cfg).Analyze(context.Background(), bookText())
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, []string{"A", "B", "C"}, got.Characters)
	assert.Equal(t, 3, parStub.count())
}

func TestAnalyze_ConcurrentFailure(t *testing.T) {
	stub := &stubInferencer{reply: func(_ int, user string) (string, error) {
		if strings.Contains(user, "cccc") {
			return "nope", nil
		}
		return `{"characters":["X"]}`, nil
	}}
	cfg := testConfig(4000)
	cfg.Concurrency = 2

	res, err := New(stub, cfg).Analyze(context.Background(), bookText())
	assert.Nil(t, res)
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 2, aerr.Chunk)
}

func TestAnalyze_TokenCounter(t *testing.T) {
	stub := &stubInferencer{reply: byChunk(nil)}
	var counted []string
	a := New(stub, testConfig(4000))
	a.CountTokens = func(s string) (int, error) {
		counted = append(counted, s)
		return len(s) / 4, nil
	}

	_, err := a.Analyze(context.Background(), bookText())
	require.NoError(t, err)
	assert.Len(t, counted, 3)
}
