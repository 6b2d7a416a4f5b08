package library

import (
	"math"
	"strings"

	"storyroom/internal/entity"
	"storyroom/internal/usecase"
)

// UpsertRequest is the wire shape of POST /api/library/entry. It is a
// discriminated union on Source: exactly one of LocalBookID (source=local)
// or BookData (source=external) must be present.
type UpsertRequest struct {
	Source      string    `json:"source"`
	LocalBookID *string   `json:"local_book_id"`
	BookData    *BookData `json:"book_data"`
	Status      *int      `json:"status"`
	Rating      *float64  `json:"rating"`
}

// BookData describes an external candidate as returned by search.
type BookData struct {
	ExternalID       *string  `json:"external_id"`
	ISBN             *string  `json:"isbn"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	CoverURL         *string  `json:"cover_url"`
	FirstPublishYear *int     `json:"first_publish_year"`
}

// upsert is the validated form of UpsertRequest. Exactly one of localBookID
// and external is set, so the illegal mixed states of the wire shape cannot
// reach storage.
type upsert struct {
	status      int
	rating      *float64
	localBookID string
	external    *externalBook
}

type externalBook struct {
	title    string
	author   *string // authors joined with ", ", nil when the list is empty
	isbn     *string
	coverURL *string
}

func (r UpsertRequest) normalize() (*upsert, error) {
	if r.Status == nil {
		return nil, usecase.Invalid("status is required")
	}
	if !entity.ValidStatus(*r.Status) {
		return nil, usecase.Invalid("status must be 0 (want to read), 1 (reading) or 2 (read)")
	}
	if r.Rating != nil {
		if *r.Status != entity.StatusRead {
			return nil, usecase.Invalid("rating is only allowed when status is read")
		}
		if *r.Rating < 1 || *r.Rating > 5 {
			return nil, usecase.Invalid("rating must be between 1 and 5")
		}
		if half := *r.Rating * 2; half != math.Trunc(half) {
			return nil, usecase.Invalid("rating must be a multiple of 0.5")
		}
	}

	out := &upsert{status: *r.Status, rating: r.Rating}

	switch r.Source {
	case entity.SourceLocal:
		if r.BookData != nil {
			return nil, usecase.Invalid("book_data is not allowed when source is local")
		}
		if r.LocalBookID == nil || strings.TrimSpace(*r.LocalBookID) == "" {
			return nil, usecase.Invalid("local_book_id is required when source is local")
		}
		out.localBookID = strings.TrimSpace(*r.LocalBookID)
	case entity.SourceExternal:
		if r.LocalBookID != nil {
			return nil, usecase.Invalid("local_book_id is not allowed when source is external")
		}
		if r.BookData == nil {
			return nil, usecase.Invalid("book_data is required when source is external")
		}
		title := strings.TrimSpace(r.BookData.Title)
		if title == "" {
			return nil, usecase.Invalid("book_data.title is required")
		}
		out.external = &externalBook{
			title:    title,
			author:   joinAuthors(r.BookData.Authors),
			isbn:     trimPtr(r.BookData.ISBN),
			coverURL: trimPtr(r.BookData.CoverURL),
		}
	default:
		return nil, usecase.Invalid("source must be %q or %q", entity.SourceLocal, entity.SourceExternal)
	}

	return out, nil
}

func joinAuthors(authors []string) *string {
	var kept []string
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, ", ")
	return &joined
}

// trimPtr normalizes optional strings: whitespace-only becomes nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
