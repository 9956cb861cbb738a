package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/segmentio/ksuid"

	"interplay/pkg/analysis"
	"interplay/pkg/schema"
)

// Analyzer runs the chunked extraction over a document.
type Analyzer interface {
	AnalyzeWithProgress(ctx context.Context, content string, progress func(analysis.Progress)) (*schema.AnalysisResult, error)
}

// BookFetcher retrieves a book by id.
type BookFetcher interface {
	Fetch(ctx context.Context, id string) (schema.Book, error)
}

type Options struct {
	RequestTimeout time.Duration // bounds analyze requests, 0 disables
	BodyLimit      string        // e.g. "10M", empty disables
}

type Server struct {
	Echo     *echo.Echo
	Analyzer Analyzer
	Books    BookFetcher
	Ctx      context.Context
}

func NewServer(ctx context.Context, analyzer Analyzer, books BookFetcher, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(runLogger)

	s := &Server{
		Echo:     e,
		Analyzer: analyzer,
		Books:    books,
		Ctx:      ctx,
	}

	s.registerRoutes(opts)
	return s
}

func (s *Server) registerRoutes(opts Options) {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/fetch-book", s.handlePostFetchBook)

	var mw []echo.MiddlewareFunc
	if opts.RequestTimeout > 0 {
		mw = append(mw, middleware.ContextTimeout(opts.RequestTimeout))
	}
	analyze := api.Group("/analyze", mw...)
	analyze.POST("", s.handlePostAnalyze)
	analyze.POST("/stream", s.handlePostAnalyzeStream)
}

// runLogger tags each request with a run id and stores a logger carrying it
// in the request context.
func runLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		run := ksuid.New().String()
		c.Response().Header().Set("X-Run-Id", run)

		req := c.Request()
		logger := log.Default().With("run", run)
		c.SetRequest(req.WithContext(log.WithContext(req.Context(), logger)))
		return next(c)
	}
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}
