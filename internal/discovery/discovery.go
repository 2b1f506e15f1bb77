package discovery

import (
	"context"
	"errors"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
)

var (
	// ErrNoListings is returned when no active listing by another user exists.
	ErrNoListings = errors.New("no listings available")
	// ErrOwnListing is returned when a viewer tries to favorite their own listing.
	ErrOwnListing = errors.New("cannot favorite own listing")
)

// Result is one listing served to a viewer, annotated for button rendering.
type Result struct {
	Listing   *domain.Listing
	Favorited bool
	// Reshuffled is set when the viewer had seen every candidate and their
	// seen-set was reset before picking.
	Reshuffled bool
}

// Client serves viewers a randomized, non-repeating stream of other users'
// active listings and manages their favorites.
type Client interface {
	// Next picks one unseen active listing not owned by the viewer, uniformly
	// at random, marking it viewed. Returns ErrNoListings when nothing
	// qualifies.
	Next(ctx context.Context, viewerID int64) (*Result, error)

	// AddFavorite favorites a listing after verifying the viewer does not own
	// it and it is still active.
	AddFavorite(ctx context.Context, viewerID int64, listingID string) error

	// RemoveFavorite unfavorites a listing. Idempotent.
	RemoveFavorite(ctx context.Context, viewerID int64, listingID string) error

	// Favorites resolves the viewer's favorites to listings, excluding any
	// that have been deactivated, newest first.
	Favorites(ctx context.Context, viewerID int64) ([]*domain.Listing, error)
}
