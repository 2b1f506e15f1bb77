package discoveryimpl

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/bazarbot/bazar-telegram-bot/internal/discovery"
	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	mock_favorite "github.com/bazarbot/bazar-telegram-bot/internal/repositories/favorite/mocks"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing"
	mock_listing "github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing/mocks"
	mock_viewed "github.com/bazarbot/bazar-telegram-bot/internal/repositories/viewed/mocks"
	apperrors "github.com/bazarbot/bazar-telegram-bot/pkg/errors"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const viewerID int64 = 7

type mocks struct {
	listings  *mock_listing.MockRepository
	favorites *mock_favorite.MockRepository
	viewed    *mock_viewed.MockRepository
}

func newTestDiscovery(t *testing.T) (*DiscoveryImpl, mocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks{
		listings:  mock_listing.NewMockRepository(ctrl),
		favorites: mock_favorite.NewMockRepository(ctrl),
		viewed:    mock_viewed.NewMockRepository(ctrl),
	}
	d := New(Opts{
		ListingRepo:  m.listings,
		FavoriteRepo: m.favorites,
		ViewedRepo:   m.viewed,
		Logger:       logger.New(logger.Opts{}),
	})
	d.rng = rand.New(rand.NewSource(1))
	return d, m
}

func activeListing(id string, ownerID int64) *domain.Listing {
	return &domain.Listing{ID: id, OwnerID: ownerID, Title: "item " + id, Price: 100, IsActive: true}
}

func TestNext_NoCandidates(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.listings.EXPECT().GetActiveExcluding(gomock.Any(), viewerID).Return(nil, nil)

	res, err := d.Next(context.Background(), viewerID)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, discovery.ErrNoListings)
}

func TestNext_PicksOnlyUnseenListing(t *testing.T) {
	d, m := newTestDiscovery(t)
	candidates := []*domain.Listing{
		activeListing("a", 1),
		activeListing("b", 2),
		activeListing("c", 3),
	}
	m.listings.EXPECT().GetActiveExcluding(gomock.Any(), viewerID).Return(candidates, nil)
	m.viewed.EXPECT().ViewedIDs(gomock.Any(), viewerID).Return([]string{"a", "c"}, nil)
	m.viewed.EXPECT().MarkViewed(gomock.Any(), viewerID, "b").Return(nil)
	m.favorites.EXPECT().Exists(gomock.Any(), viewerID, "b").Return(true, nil)

	res, err := d.Next(context.Background(), viewerID)

	require.NoError(t, err)
	assert.Equal(t, "b", res.Listing.ID)
	assert.True(t, res.Favorited)
	assert.False(t, res.Reshuffled)
}

func TestNext_ExhaustedResetsAndReshuffles(t *testing.T) {
	d, m := newTestDiscovery(t)
	candidates := []*domain.Listing{
		activeListing("a", 1),
		activeListing("b", 2),
	}
	m.listings.EXPECT().GetActiveExcluding(gomock.Any(), viewerID).Return(candidates, nil)
	m.viewed.EXPECT().ViewedIDs(gomock.Any(), viewerID).Return([]string{"a", "b"}, nil)
	m.viewed.EXPECT().Reset(gomock.Any(), viewerID).Return(nil)
	m.viewed.EXPECT().MarkViewed(gomock.Any(), viewerID, gomock.Any()).Return(nil)
	m.favorites.EXPECT().Exists(gomock.Any(), viewerID, gomock.Any()).Return(false, nil)

	res, err := d.Next(context.Background(), viewerID)

	require.NoError(t, err)
	assert.True(t, res.Reshuffled)
	assert.Contains(t, []string{"a", "b"}, res.Listing.ID)
}

func TestNext_ViewedStoreErrorPropagates(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.listings.EXPECT().GetActiveExcluding(gomock.Any(), viewerID).
		Return([]*domain.Listing{activeListing("a", 1)}, nil)
	m.viewed.EXPECT().ViewedIDs(gomock.Any(), viewerID).Return(nil, errors.New("redis down"))

	res, err := d.Next(context.Background(), viewerID)

	assert.Nil(t, res)
	assert.EqualError(t, err, "redis down")
}

func TestAddFavorite_OwnListingRejected(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.listings.EXPECT().GetByID(gomock.Any(), "mine").Return(activeListing("mine", viewerID), nil)

	err := d.AddFavorite(context.Background(), viewerID, "mine")

	assert.ErrorIs(t, err, discovery.ErrOwnListing)
}

func TestAddFavorite_InactiveListingIsNotFound(t *testing.T) {
	d, m := newTestDiscovery(t)
	inactive := activeListing("gone", 1)
	inactive.IsActive = false
	m.listings.EXPECT().GetByID(gomock.Any(), "gone").Return(inactive, nil)

	err := d.AddFavorite(context.Background(), viewerID, "gone")

	assert.ErrorIs(t, err, listing.ErrNotFound)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddFavorite_UnknownListing(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.listings.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, listing.ErrNotFound)

	err := d.AddFavorite(context.Background(), viewerID, "nope")

	assert.ErrorIs(t, err, listing.ErrNotFound)
}

func TestAddFavorite_Saves(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.listings.EXPECT().GetByID(gomock.Any(), "a").Return(activeListing("a", 1), nil)
	m.favorites.EXPECT().Add(gomock.Any(), viewerID, "a").Return(nil)

	require.NoError(t, d.AddFavorite(context.Background(), viewerID, "a"))
}

func TestRemoveFavorite_Delegates(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.favorites.EXPECT().Remove(gomock.Any(), viewerID, "a").Return(nil)

	require.NoError(t, d.RemoveFavorite(context.Background(), viewerID, "a"))
}

func TestFavorites_EmptySkipsListingLookup(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.favorites.EXPECT().IDs(gomock.Any(), viewerID).Return(nil, nil)

	got, err := d.Favorites(context.Background(), viewerID)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFavorites_ResolvesActiveListings(t *testing.T) {
	d, m := newTestDiscovery(t)
	m.favorites.EXPECT().IDs(gomock.Any(), viewerID).Return([]string{"b", "a"}, nil)
	resolved := []*domain.Listing{activeListing("b", 2)}
	m.listings.EXPECT().GetActiveByIDs(gomock.Any(), []string{"b", "a"}).Return(resolved, nil)

	got, err := d.Favorites(context.Background(), viewerID)

	require.NoError(t, err)
	assert.Equal(t, resolved, got)
}
