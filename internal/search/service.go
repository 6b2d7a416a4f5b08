package search

import (
	"context"
	"log"
	"strings"

	"storyroom/internal/entity"
	"storyroom/internal/usecase"
)

const (
	MinQueryLen  = 3
	DefaultLimit = 20
	maxLimit     = 100
)

type LocalStore interface {
	SearchLocal(ctx context.Context, query string, limit int) ([]entity.Book, error)
}

type ExternalClient interface {
	Search(ctx context.Context, query string, limit int) ([]entity.BookSummary, error)
}

// Service merges catalog matches with Open Library candidates. Local results
// come first; an external candidate whose ISBN already appears locally is
// suppressed. Either side failing degrades to the other instead of failing
// the search.
type Service struct {
	local    LocalStore
	external ExternalClient
}

func NewService(local LocalStore, external ExternalClient) *Service {
	return &Service{local: local, external: external}
}

func (s *Service) SearchAll(ctx context.Context, query string, limit int) ([]entity.BookSummary, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLen {
		return nil, usecase.Invalid("query must be at least %d characters", MinQueryLen)
	}
	if limit <= 0 || limit > maxLimit {
		limit = DefaultLimit
	}

	results := make([]entity.BookSummary, 0, limit)
	localISBNs := make(map[string]bool)

	books, err := s.local.SearchLocal(ctx, query, limit)
	if err != nil {
		log.Printf("search: local catalog query failed: %v", err)
	}
	for _, b := range books {
		results = append(results, localSummary(b))
		if b.ISBN != nil {
			localISBNs[*b.ISBN] = true
		}
	}

	external, err := s.external.Search(ctx, query, limit)
	if err != nil {
		log.Printf("search: open library unavailable: %v", err)
		return results, nil
	}
	for _, candidate := range external {
		if candidate.ISBN != nil && localISBNs[*candidate.ISBN] {
			continue
		}
		results = append(results, candidate)
	}
	return results, nil
}

func localSummary(b entity.Book) entity.BookSummary {
	id := b.ID
	return entity.BookSummary{
		LocalBookID:  &id,
		Title:        b.Title,
		Authors:      splitAuthors(b.Author),
		ISBN:         b.ISBN,
		CoverURL:     b.CoverURL,
		PublicRating: b.PublicRating,
		Source:       entity.SourceLocal,
	}
}

func splitAuthors(author *string) []string {
	if author == nil || *author == "" {
		return []string{}
	}
	return strings.Split(*author, ", ")
}
