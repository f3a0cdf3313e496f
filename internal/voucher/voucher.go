package voucher

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Voucher authorizes minting one token under fixed price and metadata terms.
type Voucher struct {
	TokenID   uint64
	Price     *big.Int
	TokenURI  string
	Signature []byte
}

// voucherJSON is the wire form. Price travels as a decimal string so that
// wei amounts survive JSON clients that only have float64 numbers.
type voucherJSON struct {
	TokenID   uint64        `json:"tokenId"`
	Price     string        `json:"price"`
	TokenURI  string        `json:"tokenURI"`
	Signature hexutil.Bytes `json:"signature"`
}

// Digest returns the hash the signature is expected to cover.
func (v Voucher) Digest() (common.Hash, error) {
	return Hash(v.TokenID, v.Price, v.TokenURI)
}

// ConsumptionKey identifies the voucher for replay protection. It hashes the
// canonical form of the signature so that v=0/1 and v=27/28 encodings of the
// same signature map to the same key.
func (v Voucher) ConsumptionKey() (common.Hash, error) {
	sig, err := CanonicalSignature(v.Signature)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(sig), nil
}

// MarshalJSON implements json.Marshaler.
func (v Voucher) MarshalJSON() ([]byte, error) {
	price := "0"
	if v.Price != nil {
		price = v.Price.String()
	}
	return json.Marshal(voucherJSON{
		TokenID:   v.TokenID,
		Price:     price,
		TokenURI:  v.TokenURI,
		Signature: v.Signature,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Voucher) UnmarshalJSON(data []byte) error {
	var w voucherJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	price, ok := new(big.Int).SetString(w.Price, 10)
	if !ok {
		return fmt.Errorf("invalid voucher price %q", w.Price)
	}
	v.TokenID = w.TokenID
	v.Price = price
	v.TokenURI = w.TokenURI
	v.Signature = w.Signature
	return nil
}
