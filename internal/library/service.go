package library

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"storyroom/internal/entity"
	"storyroom/internal/usecase"
)

// Tx is the slice of the catalog store the reconciler uses inside one
// transaction. Implemented by store.CatalogPG.
type Tx interface {
	FindBookByID(ctx context.Context, id string) (entity.Book, error)
	FindBookByISBN(ctx context.Context, isbn string) (entity.Book, error)
	FindBookByTitleAuthor(ctx context.Context, title string, author *string) (entity.Book, error)
	// CreateBook inserts b and fills its generated fields. ErrAlreadyExists
	// when a row with the same non-null ISBN got there first.
	CreateBook(ctx context.Context, b *entity.Book) error
	// EnrichBook backfills isbn and cover_url onto an existing book without
	// overwriting non-null values.
	EnrichBook(ctx context.Context, bookID string, isbn, coverURL *string) error
	// UpsertEntry creates the (user, book) entry or overwrites status and
	// rating in place, filling ID and DateAdded on e either way.
	UpsertEntry(ctx context.Context, e *entity.LibraryEntry) error
}

type Store interface {
	// InTx runs fn inside a single transaction, rolling back on error.
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Service reconciles a submitted book against the catalog and upserts the
// user's library entry for it. Book resolution and the entry upsert commit
// together or not at all.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) UpsertEntry(ctx context.Context, userID string, req UpsertRequest) (entity.LibraryEntry, error) {
	p, err := req.normalize()
	if err != nil {
		return entity.LibraryEntry{}, err
	}

	var entry entity.LibraryEntry
	err = s.store.InTx(ctx, func(tx Tx) error {
		book, err := s.resolveBook(ctx, tx, p)
		if err != nil {
			return err
		}
		entry = entity.LibraryEntry{
			UserID: userID,
			BookID: book.ID,
			Status: p.status,
			Rating: p.rating,
		}
		return tx.UpsertEntry(ctx, &entry)
	})
	if err != nil {
		return entity.LibraryEntry{}, err
	}
	return entry, nil
}

func (s *Service) resolveBook(ctx context.Context, tx Tx, p *upsert) (entity.Book, error) {
	if p.external == nil {
		// A malformed id cannot match anything; don't let it reach the
		// uuid column as a cast error.
		if _, err := uuid.Parse(p.localBookID); err != nil {
			return entity.Book{}, usecase.ErrNotFound
		}
		return tx.FindBookByID(ctx, p.localBookID)
	}
	return s.resolveExternal(ctx, tx, p.external)
}

// resolveExternal finds the catalog book for an external candidate, or
// creates one. Match order: ISBN first, then exact title+author. A
// title/author match missing an isbn or cover the candidate supplies gets
// those backfilled.
func (s *Service) resolveExternal(ctx context.Context, tx Tx, ext *externalBook) (entity.Book, error) {
	if ext.isbn != nil {
		book, err := tx.FindBookByISBN(ctx, *ext.isbn)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, usecase.ErrNotFound) {
			return entity.Book{}, err
		}
	}

	book, err := tx.FindBookByTitleAuthor(ctx, ext.title, ext.author)
	if err == nil {
		missingISBN := book.ISBN == nil && ext.isbn != nil
		missingCover := book.CoverURL == nil && ext.coverURL != nil
		if missingISBN || missingCover {
			if err := tx.EnrichBook(ctx, book.ID, ext.isbn, ext.coverURL); err != nil {
				return entity.Book{}, err
			}
			if missingISBN {
				book.ISBN = ext.isbn
			}
			if missingCover {
				book.CoverURL = ext.coverURL
			}
		}
		return book, nil
	}
	if !errors.Is(err, usecase.ErrNotFound) {
		return entity.Book{}, err
	}

	book = entity.Book{
		Title:    ext.title,
		Author:   ext.author,
		ISBN:     ext.isbn,
		CoverURL: ext.coverURL,
	}
	err = tx.CreateBook(ctx, &book)
	if err == nil {
		return book, nil
	}
	if errors.Is(err, usecase.ErrAlreadyExists) && ext.isbn != nil {
		// A concurrent request created the same ISBN between our lookup and
		// the insert. The committed row is the canonical one.
		return tx.FindBookByISBN(ctx, *ext.isbn)
	}
	return entity.Book{}, err
}
