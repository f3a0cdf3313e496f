package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/price"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

// defaultPageSize applies when a listing does not ask for a limit.
const defaultPageSize = 50

// NFTRepositoryInterface defines the interface for catalog data access.
type NFTRepositoryInterface interface {
	GetByTokenID(ctx context.Context, tokenID uint64) (*model.NFT, error)
	List(ctx context.Context) ([]model.NFT, error)
	Upsert(ctx context.Context, tx database.TxQuerier, nft *model.NFT) error
}

// MintRepositoryInterface defines the interface for the advisory minted tracker.
type MintRepositoryInterface interface {
	Get(ctx context.Context, tokenID uint64) (*model.MintRecord, error)
	Set(ctx context.Context, rec *model.MintRecord) error
	IsPresent(ctx context.Context, tokenID uint64) (bool, error)
	List(ctx context.Context) (map[uint64]model.MintRecord, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NFTService provides catalog queries joined with the minted tracker.
type NFTService struct {
	pool            TxBeginner
	nftRepo         NFTRepositoryInterface
	mintRepo        MintRepositoryInterface
	defaultPriceWei *big.Int
}

// NewNFTService creates a new NFTService.
// defaultPriceWei is used for imported items that carry no price.
func NewNFTService(pool *pgxpool.Pool, nftRepo NFTRepositoryInterface, mintRepo MintRepositoryInterface, defaultPriceWei *big.Int) *NFTService {
	return NewNFTServiceWithTxBeginner(pool, nftRepo, mintRepo, defaultPriceWei)
}

// NewNFTServiceWithTxBeginner creates an NFTService with a custom TxBeginner.
// Primarily used for testing.
func NewNFTServiceWithTxBeginner(pool TxBeginner, nftRepo NFTRepositoryInterface, mintRepo MintRepositoryInterface, defaultPriceWei *big.Int) *NFTService {
	if defaultPriceWei == nil {
		defaultPriceWei = new(big.Int)
	}
	return &NFTService{
		pool:            pool,
		nftRepo:         nftRepo,
		mintRepo:        mintRepo,
		defaultPriceWei: new(big.Int).Set(defaultPriceWei),
	}
}

// List returns a page of the catalog, optionally filtered by mint status.
// Total counts the filtered items before pagination.
func (s *NFTService) List(ctx context.Context, q model.ListNFTsQuery) (*model.NFTList, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, ErrInvalidRequest
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	items, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.NFTResponse, 0, len(items))
	for _, it := range items {
		if q.Minted != nil && it.Minted != *q.Minted {
			continue
		}
		filtered = append(filtered, it)
	}

	page := []model.NFTResponse{}
	if q.Offset < len(filtered) {
		end := q.Offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page = filtered[q.Offset:end]
	}

	return &model.NFTList{
		Data: page,
		Pagination: model.Pagination{
			Total:  len(filtered),
			Limit:  limit,
			Offset: q.Offset,
		},
	}, nil
}

// GetByTokenID returns one catalog item with its mint status.
// Returns ErrNFTNotFound if the token is not in the catalog.
func (s *NFTService) GetByTokenID(ctx context.Context, tokenID uint64) (*model.NFTResponse, error) {
	nft, err := s.nftRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get nft: %w", err)
	}
	if nft == nil {
		return nil, ErrNFTNotFound
	}

	rec, err := s.mintRepo.Get(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get mint record: %w", err)
	}

	resp := toResponse(*nft, rec)
	return &resp, nil
}

// ListByOwner returns the catalog items recorded as minted to owner.
// The comparison is case-insensitive.
func (s *NFTService) ListByOwner(ctx context.Context, owner string) ([]model.NFTResponse, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return nil, ErrInvalidRequest
	}

	items, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	owned := []model.NFTResponse{}
	for _, it := range items {
		if it.Owner != nil && strings.ToLower(*it.Owner) == owner {
			owned = append(owned, it)
		}
	}
	return owned, nil
}

// Stats summarizes the collection. Volume sums the catalog price of tokens
// the tracker records as minted, so it is advisory like the tracker itself.
func (s *NFTService) Stats(ctx context.Context) (*model.CollectionStats, error) {
	nfts, err := s.nftRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nfts: %w", err)
	}
	records, err := s.mintRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mint records: %w", err)
	}

	var (
		minted int
		floor  *big.Int
		volume = new(big.Int)
	)
	for _, nft := range nfts {
		wei, err := price.ParseWei(nft.PriceWei)
		if err != nil {
			log.Warn().Err(err).Uint64("token_id", nft.TokenID).Msg("skipping catalog item with bad price")
			continue
		}
		if floor == nil || wei.Cmp(floor) < 0 {
			floor = wei
		}
		if _, ok := records[nft.TokenID]; ok {
			minted++
			volume.Add(volume, wei)
		}
	}

	floorETH := decimal.Zero
	if floor != nil {
		floorETH = price.WeiToETH(floor)
	}

	return &model.CollectionStats{
		Total:       len(nfts),
		Minted:      minted,
		Available:   len(nfts) - minted,
		FloorPrice:  floorETH.String(),
		TotalVolume: price.WeiToETH(volume).String(),
	}, nil
}

// Import upserts catalog items in a single transaction.
// Either every item is stored or none is.
func (s *NFTService) Import(ctx context.Context, items []model.CatalogItem) (int, error) {
	nfts := make([]model.NFT, 0, len(items))
	seen := make(map[uint64]struct{}, len(items))
	for i, it := range items {
		nft, err := s.toNFT(it)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		if _, dup := seen[nft.TokenID]; dup {
			return 0, fmt.Errorf("item %d: duplicate token id %d: %w", i, nft.TokenID, ErrInvalidRequest)
		}
		seen[nft.TokenID] = struct{}{}
		nfts = append(nfts, nft)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	for i := range nfts {
		if err := s.nftRepo.Upsert(ctx, tx, &nfts[i]); err != nil {
			return 0, fmt.Errorf("upsert nft: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	log.Info().Int("count", len(nfts)).Msg("catalog imported")
	return len(nfts), nil
}

func (s *NFTService) toNFT(it model.CatalogItem) (model.NFT, error) {
	if it.TokenID == 0 || strings.TrimSpace(it.Name) == "" || strings.TrimSpace(it.Metadata) == "" {
		return model.NFT{}, ErrInvalidRequest
	}

	wei := s.defaultPriceWei
	if strings.TrimSpace(it.Price) != "" {
		var err error
		wei, err = price.NormalizePriceWei(it.Price)
		if err != nil {
			return model.NFT{}, fmt.Errorf("token %d: %w", it.TokenID, err)
		}
	}

	attrs := it.Attributes
	if attrs == nil {
		attrs = []model.Attribute{}
	}

	return model.NFT{
		TokenID:         it.TokenID,
		Name:            it.Name,
		Description:     it.Description,
		Image:           it.Image,
		ImageHash:       it.ImageHash,
		Metadata:        it.Metadata,
		MetadataHash:    it.MetadataHash,
		MetadataGateway: it.MetadataGateway,
		Attributes:      attrs,
		PriceWei:        wei.String(),
	}, nil
}

// catalog joins every catalog item with its mint record.
func (s *NFTService) catalog(ctx context.Context) ([]model.NFTResponse, error) {
	nfts, err := s.nftRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nfts: %w", err)
	}
	records, err := s.mintRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mint records: %w", err)
	}

	out := make([]model.NFTResponse, 0, len(nfts))
	for _, nft := range nfts {
		var rec *model.MintRecord
		if r, ok := records[nft.TokenID]; ok {
			rec = &r
		}
		out = append(out, toResponse(nft, rec))
	}
	return out, nil
}

func toResponse(nft model.NFT, rec *model.MintRecord) model.NFTResponse {
	resp := model.NFTResponse{
		TokenID:         nft.TokenID,
		Name:            nft.Name,
		Description:     nft.Description,
		Image:           nft.Image,
		ImageHash:       nft.ImageHash,
		Metadata:        nft.Metadata,
		MetadataHash:    nft.MetadataHash,
		MetadataGateway: nft.MetadataGateway,
		Attributes:      nft.Attributes,
		PriceWei:        nft.PriceWei,
		Rarity:          nft.Rarity(),
	}
	if resp.Attributes == nil {
		resp.Attributes = []model.Attribute{}
	}

	if wei, err := price.ParseWei(nft.PriceWei); err == nil {
		resp.Price = price.FormatETH(wei)
	}

	if rec != nil {
		owner := rec.Owner
		txHash := rec.TransactionHash
		mintedAt := rec.MintedAt
		resp.Minted = true
		resp.Owner = &owner
		resp.TransactionHash = &txHash
		resp.MintedAt = &mintedAt
	}
	return resp
}
