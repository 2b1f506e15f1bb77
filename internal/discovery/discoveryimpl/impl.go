package discoveryimpl

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bazarbot/bazar-telegram-bot/internal/discovery"
	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/favorite"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/viewed"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	ListingRepo  listing.Repository
	FavoriteRepo favorite.Repository
	ViewedRepo   viewed.Repository
	Logger       logger.Logger
}

type DiscoveryImpl struct {
	ListingRepo  listing.Repository
	FavoriteRepo favorite.Repository
	ViewedRepo   viewed.Repository
	Logger       logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts Opts) *DiscoveryImpl {
	return &DiscoveryImpl{
		ListingRepo:  opts.ListingRepo,
		FavoriteRepo: opts.FavoriteRepo,
		ViewedRepo:   opts.ViewedRepo,
		Logger:       opts.Logger.WithComponent("Discovery"),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var _ discovery.Client = (*DiscoveryImpl)(nil)

func (d *DiscoveryImpl) Next(ctx context.Context, viewerID int64) (*discovery.Result, error) {
	candidates, err := d.ListingRepo.GetActiveExcluding(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, discovery.ErrNoListings
	}

	viewedIDs, err := d.ViewedRepo.ViewedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	seen := lo.SliceToMap(viewedIDs, func(id string) (string, struct{}) {
		return id, struct{}{}
	})

	pool := lo.Filter(candidates, func(l *domain.Listing, _ int) bool {
		_, ok := seen[l.ID]
		return !ok
	})

	reshuffled := false
	if len(pool) == 0 {
		// Everything has been shown; reset the seen-set and go around again.
		if err := d.ViewedRepo.Reset(ctx, viewerID); err != nil {
			return nil, err
		}
		pool = candidates
		reshuffled = true
		d.Logger.Info("Viewer exhausted all listings, reshuffling", "viewer_id", viewerID)
	}

	pick := pool[d.intn(len(pool))]

	if err := d.ViewedRepo.MarkViewed(ctx, viewerID, pick.ID); err != nil {
		return nil, err
	}

	favorited, err := d.FavoriteRepo.Exists(ctx, viewerID, pick.ID)
	if err != nil {
		return nil, err
	}

	return &discovery.Result{
		Listing:    pick,
		Favorited:  favorited,
		Reshuffled: reshuffled,
	}, nil
}

func (d *DiscoveryImpl) AddFavorite(ctx context.Context, viewerID int64, listingID string) error {
	l, err := d.ListingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if l.OwnerID == viewerID {
		return discovery.ErrOwnListing
	}
	if !l.IsActive {
		return listing.ErrNotFound
	}
	return d.FavoriteRepo.Add(ctx, viewerID, listingID)
}

func (d *DiscoveryImpl) RemoveFavorite(ctx context.Context, viewerID int64, listingID string) error {
	return d.FavoriteRepo.Remove(ctx, viewerID, listingID)
}

func (d *DiscoveryImpl) Favorites(ctx context.Context, viewerID int64) ([]*domain.Listing, error) {
	ids, err := d.FavoriteRepo.IDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	// Deactivated favorites are filtered here, not purged from the store.
	return d.ListingRepo.GetActiveByIDs(ctx, ids)
}

func (d *DiscoveryImpl) intn(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(n)
}
