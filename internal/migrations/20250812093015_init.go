package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE listings (
		id VARCHAR PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		photos TEXT[] NOT NULL DEFAULT '{}',
		price BIGINT NOT NULL CHECK (price >= 0),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	CREATE INDEX idx_listings_owner ON listings (owner_id, created_at DESC);
	CREATE INDEX idx_listings_active ON listings (is_active, created_at DESC);

	CREATE TABLE favorites (
		id SERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		listing_id VARCHAR NOT NULL REFERENCES listings (id),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		UNIQUE (user_id, listing_id)
	);
	CREATE INDEX idx_favorites_user ON favorites (user_id);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE favorites;
	DROP TABLE listings;
	`)
	if err != nil {
		return err
	}
	return nil
}
