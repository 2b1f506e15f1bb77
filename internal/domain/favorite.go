package domain

import "time"

type Favorite struct {
	ID        int
	UserID    int64
	ListingID string
	CreatedAt time.Time
}
