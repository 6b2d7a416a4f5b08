package entity

import "time"

// Library entry statuses. Stored as integers, matching the JSON surface.
const (
	StatusWantToRead = 0
	StatusReading    = 1
	StatusRead       = 2
)

func ValidStatus(s int) bool {
	return s >= StatusWantToRead && s <= StatusRead
}

// LibraryEntry tracks one book for one user. The (UserID, BookID) pair is
// unique; re-submitting overwrites Status and Rating in place and leaves
// DateAdded untouched.
type LibraryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Status    int       `json:"status"`
	Rating    *float64  `json:"rating"`
	DateAdded time.Time `json:"date_added"`
}

// LibraryItem is an entry joined with its book for listing responses.
type LibraryItem struct {
	LibraryEntry
	Book Book `json:"book"`
}
