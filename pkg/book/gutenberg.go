package book

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"interplay/pkg/schema"
)

var (
	ErrInvalidID = errors.New("book id must be a positive integer")
	ErrNotFound  = errors.New("book not found in Gutendex")
	ErrNoText    = errors.New("text version not found for this book ID")
)

type Config struct {
	GutendexURL string
	MirrorURL   string
	MaxChars    int     // runes kept from the downloaded text, 0 keeps everything
	RateLimit   float64 // mirror requests per second, 0 is unlimited
	CacheSize   int     // cached books, 0 disables caching
	CacheTTL    time.Duration
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		GutendexURL: "https://gutendex.com",
		MirrorURL:   "https://www.gutenberg.org",
		MaxChars:    10000,
		RateLimit:   2,
		CacheSize:   64,
		CacheTTL:    time.Hour,
		Timeout:     30 * time.Second,
	}
}

// Fetcher retrieves book text from Project Gutenberg.
type Fetcher struct {
	cfg     Config
	client  *resty.Client
	limiter *rate.Limiter
	cache   *expirable.LRU[string, schema.Book]
	group   singleflight.Group
}

func NewFetcher(cfg Config) *Fetcher {
	f := &Fetcher{
		cfg: cfg,
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", "interplay/1.0 (+https://gutendex.com)"),
	}
	if cfg.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	if cfg.CacheSize > 0 {
		f.cache = expirable.NewLRU[string, schema.Book](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return f
}

type gutendexBook struct {
	ID      int               `json:"id"`
	Title   string            `json:"title"`
	Formats map[string]string `json:"formats"`
}

// Fetch returns the title and (possibly truncated) raw text of book id.
// Concurrent calls for the same id share one download.
func (f *Fetcher) Fetch(ctx context.Context, id string) (schema.Book, error) {
	id = strings.TrimSpace(id)
	if n, err := strconv.Atoi(id); err != nil || n <= 0 {
		return schema.Book{}, ErrInvalidID
	}
	if f.cache != nil {
		if b, ok := f.cache.Get(id); ok {
			log.FromContext(ctx).Debug("book cache hit", "id", id)
			return b, nil
		}
	}

	// the shared download outlives any single caller; each caller still
	// stops waiting when its own ctx ends
	ch := f.group.DoChan(id, func() (any, error) {
		b, err := f.fetch(context.WithoutCancel(ctx), id)
		if err == nil && f.cache != nil {
			f.cache.Add(id, b)
		}
		return b, err
	})
	select {
	case <-ctx.Done():
		return schema.Book{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return schema.Book{}, r.Err
		}
		return r.Val.(schema.Book), nil
	}
}

func (f *Fetcher) fetch(ctx context.Context, id string) (schema.Book, error) {
	logger := log.FromContext(ctx)

	meta, err := f.metadata(ctx, id)
	if err != nil {
		return schema.Book{}, err
	}
	title := cmp.Or(strings.TrimSpace(meta.Title), "Unknown Title")

	for _, src := range f.sources(id, meta) {
		text, err := f.download(ctx, src)
		if err != nil {
			logger.Debug("text source failed", "id", id, "url", src.url, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		logger.Info("fetched book", "id", id, "title", title, "url", src.url, "chars", len(text))
		return schema.Book{ID: id, Title: title, Content: Truncate(text, f.cfg.MaxChars)}, nil
	}
	return schema.Book{}, ErrNoText
}

func (f *Fetcher) metadata(ctx context.Context, id string) (*gutendexBook, error) {
	var meta gutendexBook
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&meta).
		Get(strings.TrimRight(f.cfg.GutendexURL, "/") + "/books/" + id)
	if err != nil {
		return nil, fmt.Errorf("gutendex lookup: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFound
	case !resp.IsSuccess():
		return nil, fmt.Errorf("gutendex returned status %d", resp.StatusCode())
	}
	return &meta, nil
}

type source struct {
	url  string
	html bool
}

// sources lists candidate text URLs: the classic mirror paths first, then
// the plain-text formats Gutendex advertises, then HTML.
func (f *Fetcher) sources(id string, meta *gutendexBook) []source {
	mirror := strings.TrimRight(f.cfg.MirrorURL, "/")
	out := []source{
		{url: fmt.Sprintf("%s/files/%s/%s-0.txt", mirror, id, id)},
		{url: fmt.Sprintf("%s/files/%s/%s.txt", mirror, id, id)},
	}

	mimes := make([]string, 0, len(meta.Formats))
	for mime := range meta.Formats {
		mimes = append(mimes, mime)
	}
	// utf-8 variants sort ahead of us-ascii and plain ahead of html
	slices.SortFunc(mimes, func(a, b string) int {
		return cmp.Or(
			cmp.Compare(formatRank(a), formatRank(b)),
			strings.Compare(a, b),
		)
	})

	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s.url] = true
	}
	for _, mime := range mimes {
		url := meta.Formats[mime]
		rank := formatRank(mime)
		if rank < 0 || seen[url] || strings.HasSuffix(url, ".zip") {
			continue
		}
		seen[url] = true
		out = append(out, source{url: url, html: rank == 2})
	}
	return out
}

func formatRank(mime string) int {
	switch {
	case strings.HasPrefix(mime, "text/plain") && strings.Contains(mime, "utf-8"):
		return 0
	case strings.HasPrefix(mime, "text/plain"):
		return 1
	case strings.HasPrefix(mime, "text/html"):
		return 2
	default:
		return -1
	}
}

func (f *Fetcher) download(ctx context.Context, src source) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}
	resp, err := f.client.R().SetContext(ctx).Get(src.url)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	if src.html {
		return HTMLText(bytes.NewReader(resp.Body()))
	}
	return resp.String(), nil
}
