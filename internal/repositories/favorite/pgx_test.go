package favorite

import (
	"context"
	"testing"

	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Pgx, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgx(mock, logger.New(logger.Opts{})), mock
}

func TestAddThenRead_RoundTrip(t *testing.T) {
	repo, mock := newTestRepo(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs(int64(7), "a").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Add(ctx, 7, "a"))

	mock.ExpectQuery("SELECT 1 FROM favorites").
		WithArgs("a", int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := repo.Exists(ctx, 7, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery("SELECT listing_id FROM favorites").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"listing_id"}).AddRow("a"))

	ids, err := repo.IDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExists_Missing(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT 1 FROM favorites").
		WithArgs("a", int64(7)).
		WillReturnError(pgx.ErrNoRows)

	ok, err := repo.Exists(context.Background(), 7, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemove_IdempotentOnMissing(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("a", int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Remove(context.Background(), 7, "a"))
}
