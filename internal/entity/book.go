package entity

import "time"

// Book is a canonical catalog record shared across all users' libraries.
// ISBN is optional but unique when present; Author holds multiple authors
// joined by ", ".
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       *string   `json:"author"`
	ISBN         *string   `json:"isbn"`
	CoverURL     *string   `json:"cover_url"`
	PublicRating *float64  `json:"public_rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	SourceLocal    = "local"
	SourceExternal = "external"
)

// BookSummary is the unified search result shape for both catalog matches
// and Open Library candidates.
type BookSummary struct {
	LocalBookID      *string  `json:"local_book_id"`
	ExternalID       *string  `json:"external_id"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	ISBN             *string  `json:"isbn"`
	FirstPublishYear *int     `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	Description      *string  `json:"description"`
	CoverURL         *string  `json:"cover_url"`
	PublicRating     *float64 `json:"public_rating"`
	Source           string   `json:"source"`
}
