package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bazarbot/bazar-telegram-bot/internal/domain"
	"github.com/bazarbot/bazar-telegram-bot/internal/repositories"
	"github.com/bazarbot/bazar-telegram-bot/pkg/logger"
	"github.com/google/uuid"
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
		logger: logger.WithComponent("ListingRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

const selectColumns = "id, owner_id, title, description, photos, price, created_at, is_active"

// newID builds a millisecond timestamp plus a random suffix, so ids sort
// roughly by creation time while staying collision resistant.
func newID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d_%s", now.UnixMilli(), suffix)
}

func (p *Pgx) Create(ctx context.Context, draft domain.ListingDraft) (*domain.Listing, error) {
	now := time.Now().UTC()
	l := &domain.Listing{
		ID:          newID(now),
		OwnerID:     draft.OwnerID,
		Title:       draft.Title,
		Description: draft.Description,
		Photos:      draft.Photos,
		Price:       draft.Price,
		CreatedAt:   now,
		IsActive:    true,
	}
	if l.Photos == nil {
		l.Photos = []string{}
	}

	query, args, err := repositories.SqBuilder.
		Insert("listings").
		Columns("id", "owner_id", "title", "description", "photos", "price", "created_at", "is_active").
		Values(l.ID, l.OwnerID, l.Title, l.Description, l.Photos, l.Price, l.CreatedAt, l.IsActive).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return l, nil
}

func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query, args, err := repositories.SqBuilder.
		Select(selectColumns).
		From("listings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var l domain.Listing
	row := p.pool.QueryRow(ctx, query, args...)
	if err := scanListing(row, &l); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (p *Pgx) GetByOwner(ctx context.Context, ownerID int64) ([]*domain.Listing, error) {
	return p.getMany(ctx, sq.Eq{"owner_id": ownerID, "is_active": true})
}

func (p *Pgx) GetActiveExcluding(ctx context.Context, ownerID int64) ([]*domain.Listing, error) {
	return p.getMany(ctx, sq.And{
		sq.NotEq{"owner_id": ownerID},
		sq.Eq{"is_active": true},
	})
}

func (p *Pgx) GetActiveByIDs(ctx context.Context, ids []string) ([]*domain.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return p.getMany(ctx, sq.Eq{"id": ids, "is_active": true})
}

func (p *Pgx) getMany(ctx context.Context, pred interface{}) ([]*domain.Listing, error) {
	query, args, err := repositories.SqBuilder.
		Select(selectColumns).
		From("listings").
		Where(pred).
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

	var listings []*domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		listings = append(listings, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}

func (p *Pgx) Deactivate(ctx context.Context, id string, requesterID int64) error {
	query, args, err := repositories.SqBuilder.
		Update("listings").
		Set("is_active", false).
		Where(sq.Eq{"id": id, "owner_id": requesterID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if result.RowsAffected() > 0 {
		return nil
	}

	// Nothing matched: either the id does not exist or someone else owns it.
	var ownerID int64
	err = p.pool.QueryRow(ctx, "SELECT owner_id FROM listings WHERE id = $1", id).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return ErrUnauthorized
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner, l *domain.Listing) error {
	return row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Photos, &l.Price, &l.CreatedAt, &l.IsActive)
}
