package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"interplay/pkg/analysis"
	"interplay/pkg/book"
)

// Config holds all user-facing configuration for interplay.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Provider ProviderConfig `toml:"provider"`
	Analysis AnalysisConfig `toml:"analysis"`
	Book     BookConfig     `toml:"book"`
}

type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	RequestTimeout Duration `toml:"request_timeout"`
	BodyLimit      string   `toml:"body_limit"`
}

// ProviderConfig selects the completion backend. An empty Name picks the
// first provider with an API key configured.
type ProviderConfig struct {
	Name       string `toml:"name"`
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	OllamaHost string `toml:"ollama_host"`

	GroqAPIKey     string `toml:"groq_api_key"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	GrokAPIKey     string `toml:"grok_api_key"`
	MoonshotAPIKey string `toml:"moonshot_api_key"`
	GeminiAPIKey   string `toml:"gemini_api_key"`
}

type AnalysisConfig struct {
	ChunkSize        int      `toml:"chunk_size"`
	MaxAttempts      int      `toml:"max_attempts"`
	Temperature      float64  `toml:"temperature"`
	MaxTokens        int64    `toml:"max_tokens"`
	Backoff          Duration `toml:"backoff"`
	Concurrency      int      `toml:"concurrency"`
	StructuredOutput bool     `toml:"structured_output"`
	LogTokens        bool     `toml:"log_tokens"`
}

type BookConfig struct {
	GutendexURL string   `toml:"gutendex_url"`
	MirrorURL   string   `toml:"mirror_url"`
	MaxChars    int      `toml:"max_chars"`
	RateLimit   float64  `toml:"rate_limit"`
	CacheSize   int      `toml:"cache_size"`
	CacheTTL    Duration `toml:"cache_ttl"`
	Timeout     Duration `toml:"timeout"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	a := analysis.DefaultConfig()
	b := book.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: Duration{5 * time.Minute},
			BodyLimit:      "10M",
		},
		Analysis: AnalysisConfig{
			ChunkSize:   a.ChunkSize,
			MaxAttempts: a.MaxAttempts,
			Temperature: a.Temperature,
			MaxTokens:   a.MaxTokens,
			Backoff:     Duration{a.Backoff},
			Concurrency: a.Concurrency,
		},
		Book: BookConfig{
			GutendexURL: b.GutendexURL,
			MirrorURL:   b.MirrorURL,
			MaxChars:    b.MaxChars,
			RateLimit:   b.RateLimit,
			CacheSize:   b.CacheSize,
			CacheTTL:    Duration{b.CacheTTL},
			Timeout:     Duration{b.Timeout},
		},
	}
}

// Load reads a TOML config file and applies environment overrides. If the
// file does not exist, built-in defaults are used without error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PROVIDER", &c.Provider.Name)
	str("MODEL", &c.Provider.Model)
	str("BASE_URL", &c.Provider.BaseURL)
	str("OLLAMA_HOST", &c.Provider.OllamaHost)
	str("GROQ_API_KEY", &c.Provider.GroqAPIKey)
	str("OPENAI_API_KEY", &c.Provider.OpenAIAPIKey)
	str("GROK_API_KEY", &c.Provider.GrokAPIKey)
	str("MOONSHOT_API_KEY", &c.Provider.MoonshotAPIKey)
	str("GEMINI_API_KEY", &c.Provider.GeminiAPIKey)

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Server.Port},
		{"CHUNK_SIZE", &c.Analysis.ChunkSize},
		{"MAX_ATTEMPTS", &c.Analysis.MaxAttempts},
		{"CONCURRENCY", &c.Analysis.Concurrency},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v, ok := lookup("TEMPERATURE"); ok && v != "" {
		t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("TEMPERATURE: %w", err)
		}
		c.Analysis.Temperature = t
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) AnalysisConfig() analysis.Config {
	return analysis.Config{
		ChunkSize:        c.Analysis.ChunkSize,
		MaxAttempts:      c.Analysis.MaxAttempts,
		Temperature:      c.Analysis.Temperature,
		Model:            c.Provider.Model,
		MaxTokens:        c.Analysis.MaxTokens,
		Backoff:          c.Analysis.Backoff.Duration,
		Concurrency:      c.Analysis.Concurrency,
		StructuredOutput: c.Analysis.StructuredOutput,
	}
}

func (c *Config) BookConfig() book.Config {
	return book.Config{
		GutendexURL: c.Book.GutendexURL,
		MirrorURL:   c.Book.MirrorURL,
		MaxChars:    c.Book.MaxChars,
		RateLimit:   c.Book.RateLimit,
		CacheSize:   c.Book.CacheSize,
		CacheTTL:    c.Book.CacheTTL.Duration,
		Timeout:     c.Book.Timeout.Duration,
	}
}

// Duration is a time.Duration written as a string ("30s", "5m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
