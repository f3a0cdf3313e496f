package voucher

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer issues vouchers with an injected secp256k1 key.
// The key is read-only after construction, so a Signer is safe for concurrent use.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner creates a Signer for the given private key.
func NewSigner(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, ErrNoSigningKey
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewSignerFromHex parses a hex private key, with or without the 0x prefix.
func NewSignerFromHex(hexKey string) (*Signer, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, ErrNoSigningKey
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X"))
	if err != nil {
		// Not wrapped: the parser's message may echo key material.
		return nil, ErrInvalidSigningKey
	}
	return NewSigner(key)
}

// Address returns the identity that vouchers from this signer recover to.
func (s *Signer) Address() common.Address {
	if s == nil {
		return common.Address{}
	}
	return s.address
}

// Sign builds the voucher digest and signs it as an EIP-191 personal message,
// producing the r||s||v layout with v in {27, 28}.
func (s *Signer) Sign(tokenID uint64, price *big.Int, tokenURI string) (Voucher, error) {
	if s == nil || s.key == nil {
		return Voucher{}, ErrNoSigningKey
	}
	if tokenID == 0 {
		return Voucher{}, ErrInvalidTokenID
	}

	digest, err := Hash(tokenID, price, tokenURI)
	if err != nil {
		return Voucher{}, fmt.Errorf("hash voucher: %w", err)
	}

	sig, err := crypto.Sign(accounts.TextHash(digest.Bytes()), s.key)
	if err != nil {
		return Voucher{}, fmt.Errorf("sign voucher: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return Voucher{
		TokenID:   tokenID,
		Price:     new(big.Int).Set(price),
		TokenURI:  tokenURI,
		Signature: sig,
	}, nil
}
