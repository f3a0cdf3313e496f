package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/service"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

// MintRepository is the advisory off-chain minted tracker, a key-value store
// keyed by token id. The contract's consumption marker stays authoritative.
type MintRepository struct {
	pool database.TxQuerier
}

// NewMintRepository creates a new MintRepository with the given pool.
func NewMintRepository(pool *pgxpool.Pool) *MintRepository {
	return &MintRepository{pool: pool}
}

// NewMintRepositoryWithPool creates a new MintRepository with a custom pool interface.
// This is primarily used for testing.
func NewMintRepositoryWithPool(pool database.TxQuerier) *MintRepository {
	return &MintRepository{pool: pool}
}

// Get retrieves the mint record of a token.
// Returns nil, nil if the token is not recorded as minted.
func (r *MintRepository) Get(ctx context.Context, tokenID uint64) (*model.MintRecord, error) {
	query := `SELECT token_id, owner, transaction_hash, minted_at FROM minted_nfts WHERE token_id = $1`

	var rec model.MintRecord
	err := r.pool.QueryRow(ctx, query, tokenID).Scan(
		&rec.TokenID,
		&rec.Owner,
		&rec.TransactionHash,
		&rec.MintedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mint record %d: %w", tokenID, err)
	}
	return &rec, nil
}

// Set records a token as minted. Owner is stored lowercased.
// Returns service.ErrAlreadyMinted if the token is already recorded.
func (r *MintRepository) Set(ctx context.Context, rec *model.MintRecord) error {
	query := `INSERT INTO minted_nfts (token_id, owner, transaction_hash, minted_at) VALUES ($1, $2, $3, $4)`

	mintedAt := rec.MintedAt
	if mintedAt.IsZero() {
		mintedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, query, rec.TokenID, strings.ToLower(rec.Owner), rec.TransactionHash, mintedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrAlreadyMinted
		}
		return fmt.Errorf("insert mint record: %w", err)
	}
	return nil
}

// IsPresent reports whether a token is recorded as minted.
func (r *MintRepository) IsPresent(ctx context.Context, tokenID uint64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM minted_nfts WHERE token_id = $1)`, tokenID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check mint record %d: %w", tokenID, err)
	}
	return exists, nil
}

// List returns every mint record keyed by token id.
func (r *MintRepository) List(ctx context.Context) (map[uint64]model.MintRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT token_id, owner, transaction_hash, minted_at FROM minted_nfts`)
	if err != nil {
		return nil, fmt.Errorf("list mint records: %w", err)
	}
	defer rows.Close()

	records := make(map[uint64]model.MintRecord)
	for rows.Next() {
		var rec model.MintRecord
		if err := rows.Scan(&rec.TokenID, &rec.Owner, &rec.TransactionHash, &rec.MintedAt); err != nil {
			return nil, fmt.Errorf("scan mint record: %w", err)
		}
		records[rec.TokenID] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mint record rows: %w", err)
	}
	return records, nil
}
