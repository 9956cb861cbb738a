package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"interplay/pkg/analysis"
	"interplay/pkg/book"
	"interplay/pkg/utils"
)

type analyzeReq struct {
	Content string `json:"content"`
}

// POST /api/analyze
func (s *Server) handlePostAnalyze(c echo.Context) error {
	var req analyzeReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/analyze", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	ctx := c.Request().Context()
	res, err := s.Analyzer.AnalyzeWithProgress(ctx, book.StripBoilerplate(req.Content), nil)
	if err != nil {
		status, body := analysisError(ctx, err)
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, res)
}

// POST /api/analyze/stream
//
// Emits a "progress" event per merged chunk, then "done" with the result or
// "error" with the failure payload.
func (s *Server) handlePostAnalyzeStream(c echo.Context) error {
	var req analyzeReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/analyze/stream", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	w, err := utils.NewSSEWriter(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON("stream_unsupported", err.Error()))
	}
	defer w.Close()

	ctx := c.Request().Context()
	logger := log.FromContext(ctx)

	res, err := s.Analyzer.AnalyzeWithProgress(ctx, book.StripBoilerplate(req.Content), func(p analysis.Progress) {
		if err := w.Event("progress", p); err != nil {
			logger.Warn("SSE write error", "error", err)
		}
	})
	if err != nil {
		_, body := analysisError(ctx, err)
		return w.Event("error", body)
	}
	return w.Event("done", res)
}

// analysisError maps an analysis failure to a status code and error payload.
func analysisError(ctx context.Context, err error) (int, map[string]any) {
	logger := log.FromContext(ctx)

	switch kind := analysis.KindOf(err); {
	case kind == analysis.KindEmptyInput:
		return http.StatusBadRequest, utils.ErrJSON(string(kind), "No content provided.")
	case kind == analysis.KindExtractionFailure:
		logger.Error("analysis failed", "error", err)
		return http.StatusUnprocessableEntity, utils.ErrJSON(string(kind), "LLM parsing failed: "+err.Error())
	case kind == analysis.KindProviderFailure:
		logger.Error("analysis failed", "error", err)
		return http.StatusBadGateway, utils.ErrJSON(string(kind), "LLM request failed: "+err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("analysis cancelled", "error", err)
		return http.StatusGatewayTimeout, utils.ErrJSON("cancelled", err.Error())
	default:
		logger.Error("analysis failed", "error", err)
		return http.StatusInternalServerError, utils.ErrJSON("internal_error", err.Error())
	}
}
