package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fairyhunter13/lazymint/internal/voucher"
)

// Address returns the contract's own account, which holds mint proceeds.
func (c *LazyNFT) Address() common.Address { return c.address }

// Name returns the collection name.
func (c *LazyNFT) Name() string { return c.name }

// Symbol returns the collection ticker symbol.
func (c *LazyNFT) Symbol() string { return c.symbol }

// Owner returns the account allowed to run owner-only operations.
func (c *LazyNFT) Owner() common.Address { return c.owner }

// MaxSupply returns the cap on minted tokens.
func (c *LazyNFT) MaxSupply() uint64 { return c.maxSupply }

// MintPrice returns a copy of the advertised mint price. Vouchers carry their own price.
func (c *LazyNFT) MintPrice() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.mintPrice)
}

// SignerAddress returns the account whose vouchers are accepted.
func (c *LazyNFT) SignerAddress() common.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer
}

// TotalMinted returns the number of tokens minted by either path.
func (c *LazyNFT) TotalMinted() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalMinted
}

// RemainingSupply returns MaxSupply minus TotalMinted.
func (c *LazyNFT) RemainingSupply() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSupply - c.totalMinted
}

// Balance returns the funds held by the contract.
func (c *LazyNFT) Balance() *big.Int {
	return c.ledger.BalanceOf(c.address)
}

// IsMinted reports whether tokenID has a mint record.
func (c *LazyNFT) IsMinted(tokenID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[tokenID]
	return ok
}

// OwnerOf returns the holder of tokenID.
func (c *LazyNFT) OwnerOf(tokenID uint64) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[tokenID]
	if !ok {
		return common.Address{}, ErrNonexistentToken
	}
	return rec.Owner, nil
}

// TokenURI returns the metadata pointer of tokenID.
func (c *LazyNFT) TokenURI(tokenID uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[tokenID]
	if !ok {
		return "", ErrNonexistentToken
	}
	return rec.TokenURI, nil
}

// IsVoucherUsed reports whether the voucher's consumption marker is set.
// Vouchers with unparseable signatures are reported as unused.
func (c *LazyNFT) IsVoucherUsed(v voucher.Voucher) bool {
	key, err := v.ConsumptionKey()
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used[key]
}

// Events returns a copy of the emitted logs.
func (c *LazyNFT) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
