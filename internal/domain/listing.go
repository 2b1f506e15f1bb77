package domain

import "time"

// MaxListingPhotos is the upload cap enforced by the creation workflow.
const MaxListingPhotos = 3

type Listing struct {
	ID          string
	OwnerID     int64
	Title       string
	Description string
	Photos      []string // Telegram file IDs, in upload order
	Price       int64
	CreatedAt   time.Time
	IsActive    bool
}

// ListingDraft holds the fields accumulated by an in-progress creation
// session before they are persisted as a Listing.
type ListingDraft struct {
	OwnerID     int64
	Title       string
	Description string
	Photos      []string
	Price       int64
}
