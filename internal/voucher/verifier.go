package voucher

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Verifier checks vouchers against one expected signer address.
type Verifier struct {
	expected common.Address
}

// NewVerifier creates a Verifier for the given authorized signer.
func NewVerifier(expected common.Address) *Verifier {
	return &Verifier{expected: expected}
}

// Expected returns the authorized signer address.
func (v *Verifier) Expected() common.Address {
	return v.expected
}

// Verify reports whether the voucher was signed by the expected signer.
// Malformed signatures and recovery failures yield false.
func (v *Verifier) Verify(vc Voucher) bool {
	if v == nil || v.expected == (common.Address{}) {
		return false
	}
	addr, err := Recover(vc)
	if err != nil {
		return false
	}
	return addr == v.expected
}

// CanonicalSignature returns a copy of sig with v normalized to 27/28 after
// rejecting wrong lengths, unknown recovery ids and high-s values.
func CanonicalSignature(sig []byte) ([]byte, error) {
	if len(sig) != crypto.SignatureLength {
		return nil, ErrInvalidSignatureLength
	}

	out := make([]byte, crypto.SignatureLength)
	copy(out, sig)

	recID := out[crypto.RecoveryIDOffset]
	if recID >= 27 {
		recID -= 27
	}
	if recID > 1 {
		return nil, ErrMalformedSignature
	}

	r := new(big.Int).SetBytes(out[:32])
	s := new(big.Int).SetBytes(out[32:64])
	if !crypto.ValidateSignatureValues(recID, r, s, true) {
		return nil, ErrMalformedSignature
	}

	out[crypto.RecoveryIDOffset] = recID + 27
	return out, nil
}

// Recover returns the address that produced the voucher's signature.
func Recover(vc Voucher) (common.Address, error) {
	sig, err := CanonicalSignature(vc.Signature)
	if err != nil {
		return common.Address{}, err
	}
	digest, err := vc.Digest()
	if err != nil {
		return common.Address{}, err
	}

	// SigToPub expects the raw recovery id.
	sig[crypto.RecoveryIDOffset] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(digest.Bytes()), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
