package listing

import (
	"context"
	"testing"
	"time"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	apperrors "github.com/bazarbot/bazar-telegram-bot/pkg/errors"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingColumnsPattern = "SELECT id, owner_id, title, description, photos, price, created_at, is_active FROM listings"

func newTestRepo(t *testing.T) (*Pgx, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgx(mock, logger.New(logger.Opts{})), mock
}

func listingRows(l *domain.Listing) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "owner_id", "title", "description", "photos", "price", "created_at", "is_active"}).
		AddRow(l.ID, l.OwnerID, l.Title, l.Description, l.Photos, l.Price, l.CreatedAt, l.IsActive)
}

func TestCreateThenGetByID_RoundTrip(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(pgxmock.AnyArg(), int64(7), "Bike", "Good condition", []string{"p1"}, int64(15000), pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.Create(ctx, domain.ListingDraft{
		OwnerID:     7,
		Title:       "Bike",
		Description: "Good condition",
		Photos:      []string{"p1"},
		Price:       15000,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.WithinDuration(t, time.Now().UTC(), created.CreatedAt, time.Minute)

	mock.ExpectQuery(listingColumnsPattern).
		WithArgs(created.ID).
		WillReturnRows(listingRows(created))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NormalizesNilPhotos(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(pgxmock.AnyArg(), int64(7), "Bike", "desc", []string{}, int64(500), pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.Create(context.Background(), domain.ListingDraft{
		OwnerID: 7, Title: "Bike", Description: "desc", Price: 500,
	})
	require.NoError(t, err)
	assert.NotNil(t, created.Photos)
	assert.Empty(t, created.Photos)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(listingColumnsPattern).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "nope")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeactivate_Owner(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE listings").
		WithArgs(false, "x", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Deactivate(context.Background(), "x", 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate_NotOwner(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE listings").
		WithArgs(false, "x", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT owner_id FROM listings").
		WithArgs("x").
		WillReturnRows(pgxmock.NewRows([]string{"owner_id"}).AddRow(int64(99)))

	err := repo.Deactivate(context.Background(), "x", 7)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestDeactivate_UnknownListing(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE listings").
		WithArgs(false, "x", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT owner_id FROM listings").
		WithArgs("x").
		WillReturnError(pgx.ErrNoRows)

	assert.ErrorIs(t, repo.Deactivate(context.Background(), "x", 7), ErrNotFound)
}
