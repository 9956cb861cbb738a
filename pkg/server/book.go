package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"interplay/pkg/book"
	"interplay/pkg/utils"
)

type fetchBookReq struct {
	BookID string `json:"bookId"`
}

type fetchBookResp struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// POST /api/fetch-book
func (s *Server) handlePostFetchBook(c echo.Context) error {
	var req fetchBookReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/fetch-book", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	ctx := c.Request().Context()
	logger := log.FromContext(ctx)
	id := strings.TrimSpace(req.BookID)

	b, err := s.Books.Fetch(ctx, id)
	switch {
	case err == nil:
		logger.Info("book fetched", "id", id, "title", b.Title, "chars", len(b.Content))
		return c.JSON(http.StatusOK, fetchBookResp{Title: b.Title, Content: b.Content})
	case errors.Is(err, book.ErrInvalidID):
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("invalid_book_id", "Book ID is required."))
	case errors.Is(err, book.ErrNotFound):
		return c.JSON(http.StatusNotFound, utils.ErrJSON("book_not_found", "Book not found in Gutendex."))
	case errors.Is(err, book.ErrNoText):
		return c.JSON(http.StatusNotFound, utils.ErrJSON("book_not_found", "Text version not found for this book ID."))
	default:
		logger.Error("book fetch failed", "id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON("fetch_failed", "Failed to fetch book data."))
	}
}
