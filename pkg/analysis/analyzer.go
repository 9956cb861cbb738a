package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"interplay/pkg/inference"
	"interplay/pkg/schema"
	"interplay/pkg/utils"
)

// Config holds the tunables of an analysis run.
type Config struct {
	ChunkSize   int           // runes per chunk
	MaxAttempts int           // model round trips per chunk
	Temperature float64       // sampling temperature
	Model       string        // overrides the inferencer's model when set
	MaxTokens   int64         // completion token cap, 0 leaves it to the provider
	Backoff     time.Duration // base of the exponential wait between attempts, 0 disables waiting
	Concurrency int           // chunks in flight, 1 is strictly sequential

	// StructuredOutput requests a JSON schema response format. Not every
	// OpenAI-compatible provider accepts it.
	StructuredOutput bool
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:   2750,
		MaxAttempts: 3,
		Temperature: 0.2,
		MaxTokens:   2048,
		Backoff:     500 * time.Millisecond,
		Concurrency: 1,
	}
}

// Progress is reported after each chunk is folded into the result.
type Progress struct {
	Chunk        int `json:"chunk"`
	Total        int `json:"total"`
	Attempts     int `json:"attempts"`
	Characters   int `json:"characters"`
	Interactions int `json:"interactions"`
}

type Analyzer struct {
	Inferencer inference.Inferencer
	Config     Config

	// CountTokens, when set, is used to log the token size of each prompt.
	CountTokens func(string) (int, error)
}

func New(inf inference.Inferencer, cfg Config) *Analyzer {
	return &Analyzer{Inferencer: inf, Config: cfg}
}

// Analyze extracts characters and interactions from content.
func (a *Analyzer) Analyze(ctx context.Context, content string) (*schema.AnalysisResult, error) {
	return a.AnalyzeWithProgress(ctx, content, nil)
}

// AnalyzeWithProgress is Analyze with a callback fired once per chunk, in chunk order.
// Either the whole result or a single error is returned; partial results are discarded.
func (a *Analyzer) AnalyzeWithProgress(ctx context.Context, content string, progress func(Progress)) (*schema.AnalysisResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &Error{Kind: KindEmptyInput, Chunk: -1, Err: ErrEmptyInput}
	}

	cfg := a.Config
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	cfg.Concurrency = max(cfg.Concurrency, 1)

	doc := NewDocument(content)
	chunks, err := doc.Chunks(cfg.ChunkSize)
	if err != nil {
		return nil, err
	}

	logger := log.FromContext(ctx)
	logger.Info("starting analysis", "chars", doc.Length, "chunks", len(chunks), "chunk_size", cfg.ChunkSize)

	agg := NewAggregator()
	fold := func(c Chunk, e Extraction, attempts int) {
		agg.Add(e)
		logger.Debug("merged chunk", "chunk", c.Index+1, "characters", len(e.Characters), "interactions", len(e.Interactions))
		if progress != nil {
			progress(Progress{
				Chunk:        c.Index + 1,
				Total:        len(chunks),
				Attempts:     attempts,
				Characters:   len(agg.characters),
				Interactions: len(agg.interactions),
			})
		}
	}

	if cfg.Concurrency > 1 && len(chunks) > 1 {
		err = a.runConcurrent(ctx, cfg, doc, chunks, fold)
	} else {
		err = a.runSequential(ctx, cfg, doc, chunks, fold)
	}
	if err != nil {
		return nil, err
	}

	res := agg.Result()
	logger.Info("analysis complete", "characters", len(res.Characters), "interactions", len(res.Interactions))
	return res, nil
}

type foldFunc func(c Chunk, e Extraction, attempts int)

func (a *Analyzer) runSequential(ctx context.Context, cfg Config, doc Document, chunks []Chunk, fold foldFunc) error {
	for _, c := range chunks {
		e, attempts, err := a.extractChunk(ctx, cfg, doc, c)
		if err != nil {
			return err
		}
		fold(c, e, attempts)
	}
	return nil
}

// runConcurrent issues model calls for several chunks at once but folds the
// results in index order once every chunk has succeeded.
func (a *Analyzer) runConcurrent(ctx context.Context, cfg Config, doc Document, chunks []Chunk, fold foldFunc) error {
	type result struct {
		extraction Extraction
		attempts   int
	}
	results := make([]result, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, c := range chunks {
		g.Go(func() error {
			e, attempts, err := a.extractChunk(gctx, cfg, doc, c)
			if err != nil {
				return err
			}
			results[c.Index] = result{extraction: e, attempts: attempts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range chunks {
		fold(c, results[i].extraction, results[i].attempts)
	}
	return nil
}

// extractChunk runs the prompt, parse and retry loop for one chunk and
// returns the normalized extraction with document-global positions.
func (a *Analyzer) extractChunk(ctx context.Context, cfg Config, doc Document, c Chunk) (Extraction, int, error) {
	logger := log.FromContext(ctx)
	prompt := BuildPrompt(c.Text)
	params := requestParams(cfg)

	if a.CountTokens != nil {
		if tokens, err := a.CountTokens(systemPrompt + prompt); err == nil {
			logger.Debug("extracting chunk", "chunk", c.Index+1, "chars", c.Length, "tokens", tokens)
		}
	}

	var (
		reply    Reply
		attempts int
		replied  bool
	)
	err := retry.Do(ctx, backoff(cfg), func(ctx context.Context) error {
		attempts++
		raw, err := a.Inferencer.Infer(ctx, params, systemPrompt, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("chunk attempt failed", "chunk", c.Index+1, "attempt", attempts, "error", err)
			return retry.RetryableError(&ProviderError{Err: err})
		}
		replied = true

		reply = ParseReply(raw)
		if !reply.OK() {
			logger.Warn("chunk attempt failed", "chunk", c.Index+1, "attempt", attempts, "reason", reply.Reason)
			logger.Debug("raw model output", "chunk", c.Index+1, "output", utils.LimitStr(raw, 500))
			return retry.RetryableError(&ParseError{Reason: reply.Reason, Raw: raw})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Extraction{}, attempts, fmt.Errorf("chunk %d: %w", c.Index+1, err)
		}
		kind := KindExtractionFailure
		if !replied {
			kind = KindProviderFailure
		}
		logger.Error("chunk extraction failed", "chunk", c.Index+1, "attempts", attempts, "error", err)
		return Extraction{}, attempts, &Error{Kind: kind, Chunk: c.Index, Attempts: attempts, Err: err}
	}

	e := Normalize(reply.Object)
	e.Place(c, cfg.ChunkSize, doc.Length)
	return e, attempts, nil
}

func requestParams(cfg Config) *openai.ChatCompletionNewParams {
	params := &openai.ChatCompletionNewParams{
		Temperature: openai.Float(cfg.Temperature),
	}
	if cfg.Model != "" {
		params.Model = cfg.Model
	}
	if cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(cfg.MaxTokens)
	}
	if cfg.StructuredOutput {
		params.ResponseFormat = schema.StructuredOutputsResponseFormat()
	}
	return params
}

func backoff(cfg Config) retry.Backoff {
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	if cfg.Backoff > 0 {
		b = retry.WithCappedDuration(8*cfg.Backoff, retry.NewExponential(cfg.Backoff))
	}
	return retry.WithMaxRetries(uint64(cfg.MaxAttempts-1), b)
}
