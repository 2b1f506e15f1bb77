package favorite

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=favorite.go -destination=mocks/mock.go
type Repository interface {
	// Add inserts a favorite; adding one that already exists is a no-op.
	Add(ctx context.Context, userID int64, listingID string) error

	// Remove deletes a favorite; removing one that does not exist is a no-op.
	Remove(ctx context.Context, userID int64, listingID string) error

	// IDs returns the listing ids the user has favorited, newest favorite first.
	IDs(ctx context.Context, userID int64) ([]string, error)

	// Exists reports whether the user has favorited the listing.
	Exists(ctx context.Context, userID int64, listingID string) (bool, error)
}
