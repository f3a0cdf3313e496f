package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind names a log emitted by the collection.
type EventKind string

const (
	EventMinted           EventKind = "NFTMinted"
	EventMintPriceUpdated EventKind = "MintPriceUpdated"
	EventSignerUpdated    EventKind = "SignerUpdated"
	EventWithdrawn        EventKind = "Withdrawn"
)

// Event is a log entry. For EventMinted, Account is the new owner and Amount
// the price paid (zero for owner mints).
type Event struct {
	Kind    EventKind
	Account common.Address
	TokenID uint64
	Amount  *big.Int
}
