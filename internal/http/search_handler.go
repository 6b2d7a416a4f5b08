package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"storyroom/internal/entity"
	"storyroom/internal/search"
	"storyroom/internal/usecase"
)

type Searcher interface {
	SearchAll(ctx context.Context, query string, limit int) ([]entity.BookSummary, error)
}

type SearchHandler struct {
	searcher Searcher
}

func NewSearchHandler(searcher Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// @Summary Search books
// @Description Search the local catalog and Open Library; local matches come first
// @Tags search
// @Produce json
// @Param query query string true "Search term (min 3 characters)"
// @Param limit query int false "Max results" default(20)
// @Success 200 {array} entity.BookSummary
// @Failure 400 {object} ErrorResponse
// @Router /api/search/books [get]
func (h *SearchHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	results, err := h.searcher.SearchAll(r.Context(), query, limit)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		log.Printf("search: failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
