package usecase

import (
	"context"

	"storyroom/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	GetByID(ctx context.Context, id string) (entity.User, error)
}

// LibraryRepository covers the read/delete side of a user's library. The
// upsert path goes through the reconciler service instead, because it has
// to resolve the target book transactionally.
type LibraryRepository interface {
	// ListItems returns the user's entries joined with book data, newest
	// first. status filters when non-nil.
	ListItems(ctx context.Context, userID string, status *int) ([]entity.LibraryItem, error)

	// DeleteEntry removes one of the user's entries. ErrNotFound when the
	// entry does not exist or belongs to another user.
	DeleteEntry(ctx context.Context, userID, entryID string) error
}
