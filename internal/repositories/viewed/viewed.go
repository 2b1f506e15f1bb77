package viewed

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=viewed.go -destination=mocks/mock.go
type Repository interface {
	// MarkViewed records that the user has been shown the listing. Idempotent.
	MarkViewed(ctx context.Context, userID int64, listingID string) error

	// ViewedIDs returns the ids of all listings shown to the user.
	ViewedIDs(ctx context.Context, userID int64) ([]string, error)

	// Reset clears the user's seen-set. Favorites are untouched.
	Reset(ctx context.Context, userID int64) error
}
