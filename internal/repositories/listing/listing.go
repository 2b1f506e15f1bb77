package listing

import (
	"context"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	apperrors "github.com/bazarbot/bazar-telegram-bot/pkg/errors"
)

var (
	// ErrNotFound is returned when no listing exists with the given id.
	ErrNotFound = apperrors.Wrap(apperrors.ErrNotFound, "listing not found")
	// ErrUnauthorized is returned when the requester does not own the listing.
	ErrUnauthorized = apperrors.Wrap(apperrors.ErrUnauthorized, "requester is not the listing owner")
)

//go:generate go run go.uber.org/mock/mockgen -source=listing.go -destination=mocks/mock.go
type Repository interface {
	// Create persists a completed draft as a new active listing and returns it.
	Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error)

	// GetByID returns the listing regardless of its active flag.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// GetByOwner returns the owner's active listings, newest first.
	GetByOwner(ctx context.Context, ownerID int64) ([]*domain.Listing, error)

	// GetActiveExcluding returns active listings not owned by ownerID, newest first.
	GetActiveExcluding(ctx context.Context, ownerID int64) ([]*domain.Listing, error)

	// GetActiveByIDs resolves ids to active listings, newest first. Missing or
	// deactivated ids are silently skipped.
	GetActiveByIDs(ctx context.Context, ids []string) ([]*domain.Listing, error)

	// Deactivate soft-deletes a listing. Only the owner may deactivate;
	// deactivating an already-inactive listing you own is a no-op success.
	Deactivate(ctx context.Context, id string, requesterID int64) error
}
