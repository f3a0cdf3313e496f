package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

// mockNFTRepository is a mock implementation of NFTRepositoryInterface.
type mockNFTRepository struct {
	getByTokenIDFn func(ctx context.Context, tokenID uint64) (*model.NFT, error)
	listFn         func(ctx context.Context) ([]model.NFT, error)
	upsertFn       func(ctx context.Context, tx database.TxQuerier, nft *model.NFT) error
}

func (m *mockNFTRepository) GetByTokenID(ctx context.Context, tokenID uint64) (*model.NFT, error) {
	if m.getByTokenIDFn != nil {
		return m.getByTokenIDFn(ctx, tokenID)
	}
	return nil, nil
}

func (m *mockNFTRepository) List(ctx context.Context) ([]model.NFT, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.NFT{}, nil
}

func (m *mockNFTRepository) Upsert(ctx context.Context, tx database.TxQuerier, nft *model.NFT) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, tx, nft)
	}
	return nil
}

// mockMintRepository is a mock implementation of MintRepositoryInterface.
type mockMintRepository struct {
	getFn       func(ctx context.Context, tokenID uint64) (*model.MintRecord, error)
	setFn       func(ctx context.Context, rec *model.MintRecord) error
	isPresentFn func(ctx context.Context, tokenID uint64) (bool, error)
	listFn      func(ctx context.Context) (map[uint64]model.MintRecord, error)
}

func (m *mockMintRepository) Get(ctx context.Context, tokenID uint64) (*model.MintRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tokenID)
	}
	return nil, nil
}

func (m *mockMintRepository) Set(ctx context.Context, rec *model.MintRecord) error {
	if m.setFn != nil {
		return m.setFn(ctx, rec)
	}
	return nil
}

func (m *mockMintRepository) IsPresent(ctx context.Context, tokenID uint64) (bool, error) {
	if m.isPresentFn != nil {
		return m.isPresentFn(ctx, tokenID)
	}
	return false, nil
}

func (m *mockMintRepository) List(ctx context.Context) (map[uint64]model.MintRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return map[uint64]model.MintRecord{}, nil
}

// mockPaymentRepository is a mock implementation of PaymentRepositoryInterface.
type mockPaymentRepository struct {
	createFn     func(ctx context.Context, p *model.PaymentIntent) error
	getFn        func(ctx context.Context, id string) (*model.PaymentIntent, error)
	transitionFn func(ctx context.Context, id string, status model.PaymentStatus, txHash string, confirmedAt *time.Time) (*model.PaymentIntent, error)
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *model.PaymentIntent) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPaymentRepository) Get(ctx context.Context, id string) (*model.PaymentIntent, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPaymentRepository) Transition(ctx context.Context, id string, status model.PaymentStatus, txHash string, confirmedAt *time.Time) (*model.PaymentIntent, error) {
	if m.transitionFn != nil {
		return m.transitionFn(ctx, id, status, txHash, confirmedAt)
	}
	return nil, nil
}

// mockMintConfirmer is a mock implementation of MintConfirmer.
type mockMintConfirmer struct {
	confirmMintFn func(ctx context.Context, tokenID uint64, owner, txHash string) (*model.MintRecord, error)
}

func (m *mockMintConfirmer) ConfirmMint(ctx context.Context, tokenID uint64, owner, txHash string) (*model.MintRecord, error) {
	if m.confirmMintFn != nil {
		return m.confirmMintFn(ctx, tokenID, owner, txHash)
	}
	return &model.MintRecord{TokenID: tokenID, Owner: owner, TransactionHash: txHash}, nil
}

// mockChain is a mock implementation of MintStatusReader.
type mockChain struct {
	isMintedFn func(ctx context.Context, tokenID uint64) (bool, error)
}

func (m *mockChain) IsMinted(ctx context.Context, tokenID uint64) (bool, error) {
	if m.isMintedFn != nil {
		return m.isMintedFn(ctx, tokenID)
	}
	return false, nil
}

// mockQuoter is a mock implementation of price.Quoter backed by a fixed table.
type mockQuoter struct {
	prices map[string]decimal.Decimal
	err    error
}

func (m *mockQuoter) Quote(ctx context.Context, currency string) (decimal.Decimal, error) {
	if m.err != nil {
		return decimal.Zero, m.err
	}
	p, ok := m.prices[currency]
	if !ok {
		return decimal.Zero, errors.New("no price for " + currency)
	}
	return p, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// catalogFixture returns three items: 0.03, 0.05 and 0.2 ETH.
func catalogFixture() []model.NFT {
	return []model.NFT{
		{TokenID: 1, Name: "Guardian #1", Metadata: "ipfs://meta/1", PriceWei: "30000000000000000",
			Attributes: []model.Attribute{{TraitType: "Rarity", Value: "Common"}}},
		{TokenID: 2, Name: "Guardian #2", Metadata: "ipfs://meta/2", PriceWei: "50000000000000000",
			Attributes: []model.Attribute{{TraitType: "Rarity", Value: "Uncommon"}}},
		{TokenID: 3, Name: "Guardian #3", Metadata: "ipfs://meta/3", PriceWei: "200000000000000000",
			Attributes: []model.Attribute{{TraitType: "Rarity", Value: "Legendary"}}},
	}
}

func findNFT(tokenID uint64) *model.NFT {
	for _, n := range catalogFixture() {
		if n.TokenID == tokenID {
			nft := n
			return &nft
		}
	}
	return nil
}
