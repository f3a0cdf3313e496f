package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

const nftColumns = `token_id, name, description, image, image_hash, metadata, metadata_hash, metadata_gateway, attributes, price_wei, created_at`

// NFTRepository provides data access for the pre-generated asset catalog.
type NFTRepository struct {
	pool database.TxQuerier
}

// NewNFTRepository creates a new NFTRepository with the given pool.
func NewNFTRepository(pool *pgxpool.Pool) *NFTRepository {
	return &NFTRepository{pool: pool}
}

// NewNFTRepositoryWithPool creates a new NFTRepository with a custom pool interface.
// This is primarily used for testing.
func NewNFTRepositoryWithPool(pool database.TxQuerier) *NFTRepository {
	return &NFTRepository{pool: pool}
}

func scanNFT(row pgx.Row) (*model.NFT, error) {
	var nft model.NFT
	err := row.Scan(
		&nft.TokenID,
		&nft.Name,
		&nft.Description,
		&nft.Image,
		&nft.ImageHash,
		&nft.Metadata,
		&nft.MetadataHash,
		&nft.MetadataGateway,
		&nft.Attributes,
		&nft.PriceWei,
		&nft.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if nft.Attributes == nil {
		nft.Attributes = []model.Attribute{}
	}
	return &nft, nil
}

// GetByTokenID retrieves a catalog item by token id.
// Returns nil, nil if the item is not found (service layer handles this).
func (r *NFTRepository) GetByTokenID(ctx context.Context, tokenID uint64) (*model.NFT, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE token_id = $1`

	nft, err := scanNFT(r.pool.QueryRow(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get nft %d: %w", tokenID, err)
	}
	return nft, nil
}

// List retrieves the whole catalog ordered by token id.
// On success, returns an empty slice (not nil) when the catalog is empty.
func (r *NFTRepository) List(ctx context.Context) ([]model.NFT, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts ORDER BY token_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list nfts: %w", err)
	}
	defer rows.Close()

	nfts := []model.NFT{}
	for rows.Next() {
		nft, err := scanNFT(rows)
		if err != nil {
			return nil, fmt.Errorf("scan nft: %w", err)
		}
		nfts = append(nfts, *nft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nft rows: %w", err)
	}
	return nfts, nil
}

// Upsert inserts or replaces a catalog item within a transaction.
func (r *NFTRepository) Upsert(ctx context.Context, tx database.TxQuerier, nft *model.NFT) error {
	query := `INSERT INTO nfts (token_id, name, description, image, image_hash, metadata, metadata_hash, metadata_gateway, attributes, price_wei)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (token_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			image_hash = EXCLUDED.image_hash,
			metadata = EXCLUDED.metadata,
			metadata_hash = EXCLUDED.metadata_hash,
			metadata_gateway = EXCLUDED.metadata_gateway,
			attributes = EXCLUDED.attributes,
			price_wei = EXCLUDED.price_wei`

	attrs := nft.Attributes
	if attrs == nil {
		attrs = []model.Attribute{}
	}

	_, err := tx.Exec(ctx, query,
		nft.TokenID, nft.Name, nft.Description, nft.Image, nft.ImageHash,
		nft.Metadata, nft.MetadataHash, nft.MetadataGateway, attrs, nft.PriceWei)
	if err != nil {
		return fmt.Errorf("upsert nft %d: %w", nft.TokenID, err)
	}
	return nil
}
