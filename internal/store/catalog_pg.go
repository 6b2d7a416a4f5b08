package store

// Catalog repository implementation (Postgres)

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storyroom/internal/entity"
	"storyroom/internal/library"
	"storyroom/internal/usecase"
)

const bookColumns = "id, title, author, isbn, cover_url, public_rating, created_at, updated_at"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// code serves plain reads and the reconciler's transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type CatalogPG struct {
	db *pgxpool.Pool
}

func NewCatalogPG(db *pgxpool.Pool) *CatalogPG {
	return &CatalogPG{db: db}
}

// InTx runs fn in a single transaction; any error rolls the whole thing back.
func (r *CatalogPG) InTx(ctx context.Context, fn func(library.Tx) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&catalogQueries{q: tx})
	})
}

// SearchLocal does a case-insensitive substring match on title or author.
func (r *CatalogPG) SearchLocal(ctx context.Context, query string, limit int) ([]entity.Book, error) {
	return (&catalogQueries{q: r.db}).searchLocal(ctx, query, limit)
}

// FindBookByISBN is the non-transactional variant used outside the reconciler.
func (r *CatalogPG) FindBookByISBN(ctx context.Context, isbn string) (entity.Book, error) {
	return (&catalogQueries{q: r.db}).FindBookByISBN(ctx, isbn)
}

// catalogQueries implements library.Tx over either the pool or a pgx.Tx.
type catalogQueries struct {
	q querier
}

func (c *catalogQueries) FindBookByID(ctx context.Context, id string) (entity.Book, error) {
	const query = `
	SELECT ` + bookColumns + `
	FROM books
	WHERE id = $1
	LIMIT 1
	`
	return c.scanBook(c.q.QueryRow(ctx, query, id))
}

func (c *catalogQueries) FindBookByISBN(ctx context.Context, isbn string) (entity.Book, error) {
	const query = `
	SELECT ` + bookColumns + `
	FROM books
	WHERE isbn = $1
	LIMIT 1
	`
	return c.scanBook(c.q.QueryRow(ctx, query, isbn))
}

func (c *catalogQueries) FindBookByTitleAuthor(ctx context.Context, title string, author *string) (entity.Book, error) {
	// IS NOT DISTINCT FROM so a nil author matches rows with no author.
	const query = `
	SELECT ` + bookColumns + `
	FROM books
	WHERE title = $1 AND author IS NOT DISTINCT FROM $2
	LIMIT 1
	`
	return c.scanBook(c.q.QueryRow(ctx, query, title, author))
}

// CreateBook is a conditional insert: ON CONFLICT DO NOTHING instead of a
// raised unique violation, so losing the ISBN race does not abort the
// surrounding transaction. No returned row means another request won.
func (c *catalogQueries) CreateBook(ctx context.Context, b *entity.Book) error {
	const query = `
	INSERT INTO books (id, title, author, isbn, cover_url)
	VALUES (gen_random_uuid(), $1, $2, $3, $4)
	ON CONFLICT (isbn) DO NOTHING
	RETURNING id, created_at, updated_at
	`
	err := c.q.QueryRow(ctx, query, b.Title, b.Author, b.ISBN, b.CoverURL).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return usecase.ErrAlreadyExists
	}
	return err
}

func (c *catalogQueries) EnrichBook(ctx context.Context, bookID string, isbn, coverURL *string) error {
	const query = `
	UPDATE books
	SET isbn = COALESCE(isbn, $2),
	    cover_url = COALESCE(cover_url, $3),
	    updated_at = NOW()
	WHERE id = $1
	`
	tag, err := c.q.Exec(ctx, query, bookID, isbn, coverURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

func (c *catalogQueries) UpsertEntry(ctx context.Context, e *entity.LibraryEntry) error {
	const query = `
	INSERT INTO library_entries (id, user_id, book_id, status, rating, date_added)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW())
	ON CONFLICT (user_id, book_id)
	DO UPDATE SET status = EXCLUDED.status, rating = EXCLUDED.rating
	RETURNING id, date_added
	`
	return c.q.QueryRow(ctx, query, e.UserID, e.BookID, e.Status, e.Rating).
		Scan(&e.ID, &e.DateAdded)
}

func (c *catalogQueries) searchLocal(ctx context.Context, query string, limit int) ([]entity.Book, error) {
	const searchSQL = `
	SELECT ` + bookColumns + `
	FROM books
	WHERE title ILIKE $1 OR author ILIKE $1
	LIMIT $2
	`
	rows, err := c.q.Query(ctx, searchSQL, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []entity.Book
	for rows.Next() {
		var b entity.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CoverURL, &b.PublicRating, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *catalogQueries) scanBook(row pgx.Row) (entity.Book, error) {
	var b entity.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CoverURL, &b.PublicRating, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, usecase.ErrNotFound
		}
		return entity.Book{}, err
	}
	return b, nil
}
