package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storyroom/internal/entity"
	"storyroom/internal/search"
	"storyroom/internal/usecase"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchAll(ctx context.Context, query string, limit int) ([]entity.BookSummary, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BookSummary), args.Error(1)
}

func TestSearchHandler_SearchBooks(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		searcher := &mockSearcher{}
		handler := NewSearchHandler(searcher)

		searcher.On("SearchAll", mock.Anything, "dune", search.DefaultLimit).Return([]entity.BookSummary{
			{Title: "Dune", Source: entity.SourceLocal},
			{Title: "Dune Messiah", Source: entity.SourceExternal},
		}, nil)

		w := httptest.NewRecorder()
		handler.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/search/books?query=dune", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune Messiah")
	})

	t.Run("limit is passed through", func(t *testing.T) {
		searcher := &mockSearcher{}
		handler := NewSearchHandler(searcher)

		searcher.On("SearchAll", mock.Anything, "dune", 5).Return([]entity.BookSummary{}, nil)

		w := httptest.NewRecorder()
		handler.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/search/books?query=dune&limit=5", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		searcher.AssertExpectations(t)
	})

	t.Run("short query", func(t *testing.T) {
		searcher := &mockSearcher{}
		handler := NewSearchHandler(searcher)

		searcher.On("SearchAll", mock.Anything, "ab", search.DefaultLimit).
			Return(nil, usecase.Invalid("query must be at least %d characters", search.MinQueryLen))

		w := httptest.NewRecorder()
		handler.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/search/books?query=ab", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("search failure", func(t *testing.T) {
		searcher := &mockSearcher{}
		handler := NewSearchHandler(searcher)

		searcher.On("SearchAll", mock.Anything, "dune", search.DefaultLimit).Return(nil, assert.AnError)

		w := httptest.NewRecorder()
		handler.SearchBooks(w, httptest.NewRequest(http.MethodGet, "/api/search/books?query=dune", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
