package viewed

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, logger.New(logger.Opts{}))
}

func TestMarkViewed_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkViewed(ctx, 1, "a"))
	require.NoError(t, repo.MarkViewed(ctx, 1, "a"))
	require.NoError(t, repo.MarkViewed(ctx, 1, "b"))

	ids, err := repo.ViewedIDs(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestViewedIDs_IsolatedPerUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkViewed(ctx, 1, "a"))
	require.NoError(t, repo.MarkViewed(ctx, 2, "b"))

	ids, err := repo.ViewedIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestReset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.MarkViewed(ctx, 1, "a"))
	require.NoError(t, repo.MarkViewed(ctx, 2, "b"))
	require.NoError(t, repo.Reset(ctx, 1))

	ids, err := repo.ViewedIDs(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	others, err := repo.ViewedIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, others)
}

func TestReset_MissingUserIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Reset(context.Background(), 99))
}
