package viewed

import (
	"context"
	"fmt"

	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedis(client *redis.Client, logger logger.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger.WithComponent("ViewedRepo"),
	}
}

var _ Repository = (*Redis)(nil)

func key(userID int64) string {
	return fmt.Sprintf("viewed:%d", userID)
}

func (r *Redis) MarkViewed(ctx context.Context, userID int64, listingID string) error {
	return r.client.SAdd(ctx, key(userID), listingID).Err()
}

func (r *Redis) ViewedIDs(ctx context.Context, userID int64) ([]string, error) {
	return r.client.SMembers(ctx, key(userID)).Result()
}

func (r *Redis) Reset(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, key(userID)).Err()
}
