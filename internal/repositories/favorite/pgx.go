package favorite

import (
	"context"

	"github.com/bazarbot/bazar-telegram-bot/internal/repositories"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/jackc/pgx/v5"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pool   repositories.DB
	logger logger.Logger
}

func NewPgx(pool repositories.DB, logger logger.Logger) *Pgx {
	return &Pgx{
		pool:   pool,
		logger: logger.WithComponent("FavoriteRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Add(ctx context.Context, userID int64, listingID string) error {
	query, args, err := repositories.SqBuilder.
		Insert("favorites").
		Columns("user_id", "listing_id").
		Values(userID, listingID).
		Suffix("ON CONFLICT (user_id, listing_id) DO NOTHING").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) Remove(ctx context.Context, userID int64, listingID string) error {
	query, args, err := repositories.SqBuilder.
		Delete("favorites").
		Where(sq.Eq{"user_id": userID, "listing_id": listingID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) IDs(ctx context.Context, userID int64) ([]string, error) {
	query, args, err := repositories.SqBuilder.
		Select("listing_id").
		From("favorites").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (p *Pgx) Exists(ctx context.Context, userID int64, listingID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("favorites").
		Where(sq.Eq{"user_id": userID, "listing_id": listingID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pool.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
