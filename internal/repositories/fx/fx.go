package fx

import (
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/favorite"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/listing"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories/viewed"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(pool *pgxpool.Pool) repositories.DB {
		return pool
	}),
	listing.Module,
	favorite.Module,
	viewed.Module,
)
