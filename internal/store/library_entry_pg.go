package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storyroom/internal/entity"
	"storyroom/internal/usecase"
)

type LibraryEntryPG struct {
	db *pgxpool.Pool
}

func NewLibraryEntryPG(db *pgxpool.Pool) *LibraryEntryPG {
	return &LibraryEntryPG{db: db}
}

func (r *LibraryEntryPG) ListItems(ctx context.Context, userID string, status *int) ([]entity.LibraryItem, error) {
	const query = `
	SELECT e.id, e.user_id, e.book_id, e.status, e.rating, e.date_added,
	       b.id, b.title, b.author, b.isbn, b.cover_url, b.public_rating, b.created_at, b.updated_at
	FROM library_entries e
	JOIN books b ON b.id = e.book_id
	WHERE e.user_id = $1
	AND ($2::smallint IS NULL OR e.status = $2)
	ORDER BY e.date_added DESC
	`
	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.LibraryItem
	for rows.Next() {
		var it entity.LibraryItem
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.BookID, &it.Status, &it.Rating, &it.DateAdded,
			&it.Book.ID, &it.Book.Title, &it.Book.Author, &it.Book.ISBN, &it.Book.CoverURL,
			&it.Book.PublicRating, &it.Book.CreatedAt, &it.Book.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *LibraryEntryPG) DeleteEntry(ctx context.Context, userID, entryID string) error {
	const query = `
	DELETE FROM library_entries
	WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query, entryID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}
