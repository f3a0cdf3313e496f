package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schema creates the catalog, the advisory minted tracker and payment intents.
// Statements are idempotent so Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS nfts (
		token_id         BIGINT PRIMARY KEY CHECK (token_id > 0),
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		image            TEXT NOT NULL,
		image_hash       TEXT NOT NULL DEFAULT '',
		metadata         TEXT NOT NULL,
		metadata_hash    TEXT NOT NULL DEFAULT '',
		metadata_gateway TEXT NOT NULL DEFAULT '',
		attributes       JSONB NOT NULL DEFAULT '[]'::jsonb,
		price_wei        TEXT NOT NULL CHECK (price_wei ~ '^[0-9]{1,78}$'),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS minted_nfts (
		token_id         BIGINT PRIMARY KEY,
		owner            TEXT NOT NULL,
		transaction_hash TEXT NOT NULL,
		minted_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_minted_nfts_owner ON minted_nfts (owner)`,
	`CREATE TABLE IF NOT EXISTS payment_intents (
		id               UUID PRIMARY KEY,
		token_id         BIGINT NOT NULL CHECK (token_id > 0),
		buyer            TEXT NOT NULL,
		currency         TEXT NOT NULL,
		amount           TEXT NOT NULL,
		amount_usd       TEXT NOT NULL,
		payment_method   TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'confirmed', 'failed', 'expired')),
		transaction_hash TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at       TIMESTAMPTZ NOT NULL,
		confirmed_at     TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_intents_token ON payment_intents (token_id)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db TxQuerier) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("database schema applied")
	return nil
}
