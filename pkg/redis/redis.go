package redis

import (
	"context"
	"fmt"

	"github.com/bazarbot/bazar-telegram-bot/pkg/config"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/bazarbot/bazar-telegram-bot/pkg/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Opts holds dependencies for creating a redis client.
type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Logger logger.Logger
	Config *config.Config
}

// New creates a new redis client and manages its lifecycle.
func New(opts Opts) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Config.Redis.Addr,
		Password: opts.Config.Redis.Pass,
		DB:       opts.Config.Redis.DB,
	})

	opts.LC.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				err := retry.Do(ctx, opts.Logger, "PingRedis", func() error {
					return client.Ping(ctx).Err()
				}, retry.DefaultConfig())
				if err != nil {
					return fmt.Errorf("failed to ping redis: %w", err)
				}
				opts.Logger.Info("Connected to redis")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		},
	)

	return client, nil
}
