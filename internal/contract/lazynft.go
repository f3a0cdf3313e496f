// Package contract models the on-chain lazy-mint collection.
//
// Every state-changing method runs as one transaction: calls are serialized,
// and a call that fails is rolled back completely, including balance moves on
// the Ledger. Check order inside LazyMint is part of the contract: signature,
// payment, replay, supply.
package contract

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fairyhunter13/lazymint/internal/voucher"
)

// Msg is the caller context of a transaction.
type Msg struct {
	From  common.Address
	Value *big.Int
}

func (m Msg) value() *big.Int {
	if m.Value == nil {
		return new(big.Int)
	}
	return m.Value
}

// Config holds deployment parameters.
type Config struct {
	Address   common.Address
	Name      string
	Symbol    string
	Owner     common.Address
	MintPrice *big.Int
	MaxSupply uint64
	Signer    common.Address
}

// MintRecord is the persisted state of a minted token.
type MintRecord struct {
	TokenID  uint64
	Owner    common.Address
	TokenURI string
}

// Receipt describes a successful lazy mint.
type Receipt struct {
	TokenID   uint64
	Owner     common.Address
	PricePaid *big.Int
	Refund    *big.Int
}

// LazyNFT is the mint state machine of one collection.
type LazyNFT struct {
	mu sync.Mutex

	address   common.Address
	name      string
	symbol    string
	owner     common.Address
	mintPrice *big.Int
	maxSupply uint64
	signer    common.Address

	totalMinted  uint64
	tokenCounter uint64
	records      map[uint64]MintRecord
	used         map[common.Hash]bool
	events       []Event

	ledger  Ledger
	journal []func()
}

// New deploys a collection backed by the given ledger.
func New(cfg Config, ledger Ledger) (*LazyNFT, error) {
	if ledger == nil {
		return nil, fmt.Errorf("%w: ledger is required", ErrInvalidConfig)
	}
	if cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidConfig)
	}
	if cfg.MaxSupply == 0 {
		return nil, fmt.Errorf("%w: max supply must be positive", ErrInvalidConfig)
	}
	mintPrice := new(big.Int)
	if cfg.MintPrice != nil {
		if cfg.MintPrice.Sign() < 0 {
			return nil, fmt.Errorf("%w: mint price is negative", ErrInvalidConfig)
		}
		mintPrice.Set(cfg.MintPrice)
	}

	return &LazyNFT{
		address:   cfg.Address,
		name:      cfg.Name,
		symbol:    cfg.Symbol,
		owner:     cfg.Owner,
		mintPrice: mintPrice,
		maxSupply: cfg.MaxSupply,
		signer:    cfg.Signer,
		records:   make(map[uint64]MintRecord),
		used:      make(map[common.Hash]bool),
		ledger:    ledger,
	}, nil
}

// LazyMint redeems a voucher for msg.From, paying at least the voucher price.
// Value above the price is refunded to the caller.
func (c *LazyNFT) LazyMint(msg Msg, v voucher.Voucher) (*Receipt, error) {
	var receipt *Receipt
	err := c.transact(msg, func(payment *big.Int) error {
		if !voucher.NewVerifier(c.signer).Verify(v) {
			return ErrInvalidSignature
		}
		if payment.Cmp(v.Price) < 0 {
			return ErrInsufficientPayment
		}
		key, err := v.ConsumptionKey()
		if err != nil {
			return ErrInvalidSignature
		}
		if c.used[key] {
			return ErrVoucherAlreadyUsed
		}
		if c.totalMinted >= c.maxSupply {
			return ErrMaxSupplyReached
		}
		if _, exists := c.records[v.TokenID]; exists {
			return ErrTokenAlreadyMinted
		}

		// Consumed before the record exists so a re-entrant call sees it used.
		c.markUsed(key)
		c.mintRecord(msg.From, v.TokenID, v.TokenURI)

		refund := new(big.Int).Sub(payment, v.Price)
		if refund.Sign() > 0 {
			if err := c.ledger.Transfer(c.address, msg.From, refund); err != nil {
				return fmt.Errorf("%w: refund: %v", ErrTransferFailed, err)
			}
		}

		price := new(big.Int).Set(v.Price)
		c.emit(Event{Kind: EventMinted, Account: msg.From, TokenID: v.TokenID, Amount: price})
		receipt = &Receipt{TokenID: v.TokenID, Owner: msg.From, PricePaid: price, Refund: refund}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Mint creates the next sequential token for to. Owner only.
func (c *LazyNFT) Mint(caller, to common.Address, tokenURI string) (uint64, error) {
	var tokenID uint64
	err := c.transact(Msg{From: caller}, func(*big.Int) error {
		if caller != c.owner {
			return ErrNotOwner
		}
		id, err := c.mintNext(to, tokenURI)
		tokenID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// BatchMint mints one token per recipient. Either every token is minted or none.
func (c *LazyNFT) BatchMint(caller common.Address, tos []common.Address, tokenURIs []string) ([]uint64, error) {
	var ids []uint64
	err := c.transact(Msg{From: caller}, func(*big.Int) error {
		if caller != c.owner {
			return ErrNotOwner
		}
		if len(tos) != len(tokenURIs) {
			return ErrLengthMismatch
		}
		ids = make([]uint64, 0, len(tos))
		for i := range tos {
			id, err := c.mintNext(tos[i], tokenURIs[i])
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetMintPrice updates the default floor price. Owner only.
func (c *LazyNFT) SetMintPrice(caller common.Address, price *big.Int) error {
	return c.transact(Msg{From: caller}, func(*big.Int) error {
		if caller != c.owner {
			return ErrNotOwner
		}
		if price == nil || price.Sign() < 0 {
			return fmt.Errorf("%w: mint price is negative", ErrInvalidConfig)
		}
		prev := c.mintPrice
		c.mintPrice = new(big.Int).Set(price)
		c.journal = append(c.journal, func() { c.mintPrice = prev })
		c.emit(Event{Kind: EventMintPriceUpdated, Account: caller, Amount: new(big.Int).Set(price)})
		return nil
	})
}

// SetSignerAddress replaces the authorized voucher signer. Owner only.
// Vouchers from the previous signer stop verifying immediately.
func (c *LazyNFT) SetSignerAddress(caller, signer common.Address) error {
	return c.transact(Msg{From: caller}, func(*big.Int) error {
		if caller != c.owner {
			return ErrNotOwner
		}
		prev := c.signer
		c.signer = signer
		c.journal = append(c.journal, func() { c.signer = prev })
		c.emit(Event{Kind: EventSignerUpdated, Account: signer})
		return nil
	})
}

// Withdraw sends the entire contract balance to the owner. Owner only.
func (c *LazyNFT) Withdraw(caller common.Address) (*big.Int, error) {
	var amount *big.Int
	err := c.transact(Msg{From: caller}, func(*big.Int) error {
		if caller != c.owner {
			return ErrNotOwner
		}
		amount = c.ledger.BalanceOf(c.address)
		if amount.Sign() == 0 {
			return nil
		}
		if err := c.ledger.Transfer(c.address, c.owner, amount); err != nil {
			return fmt.Errorf("%w: withdraw: %v", ErrTransferFailed, err)
		}
		c.emit(Event{Kind: EventWithdrawn, Account: c.owner, Amount: new(big.Int).Set(amount)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// transact runs fn as one atomic call. The attached value moves to the
// contract before fn runs, as it does on chain.
func (c *LazyNFT) transact(msg Msg, fn func(payment *big.Int) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.ledger.Snapshot()
	eventsLen := len(c.events)
	c.journal = c.journal[:0]

	payment := new(big.Int).Set(msg.value())
	err := c.ledger.Transfer(msg.From, c.address, payment)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	} else {
		err = fn(payment)
	}

	if err != nil {
		for i := len(c.journal) - 1; i >= 0; i-- {
			c.journal[i]()
		}
		c.events = c.events[:eventsLen]
		c.ledger.RevertToSnapshot(snap)
	} else {
		c.ledger.Commit(snap)
	}
	c.journal = c.journal[:0]
	return err
}

func (c *LazyNFT) mintNext(to common.Address, tokenURI string) (uint64, error) {
	if to == (common.Address{}) {
		return 0, ErrInvalidRecipient
	}
	if c.totalMinted >= c.maxSupply {
		return 0, ErrMaxSupplyReached
	}
	id := c.tokenCounter + 1
	if _, exists := c.records[id]; exists {
		return 0, ErrTokenAlreadyMinted
	}

	c.tokenCounter = id
	c.journal = append(c.journal, func() { c.tokenCounter = id - 1 })
	c.mintRecord(to, id, tokenURI)
	c.emit(Event{Kind: EventMinted, Account: to, TokenID: id, Amount: new(big.Int)})
	return id, nil
}

func (c *LazyNFT) markUsed(key common.Hash) {
	c.used[key] = true
	c.journal = append(c.journal, func() { delete(c.used, key) })
}

// mintRecord creates the record and bumps totalMinted.
func (c *LazyNFT) mintRecord(to common.Address, tokenID uint64, tokenURI string) {
	c.records[tokenID] = MintRecord{TokenID: tokenID, Owner: to, TokenURI: tokenURI}
	c.totalMinted++
	c.journal = append(c.journal, func() {
		delete(c.records, tokenID)
		c.totalMinted--
	})
}

func (c *LazyNFT) emit(e Event) {
	c.events = append(c.events, e)
}
