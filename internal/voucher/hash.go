// Package voucher builds, signs and verifies lazy-mint vouchers.
//
// The digest layout matches Solidity's
// keccak256(abi.encodePacked(uint256 tokenId, uint256 price, string tokenURI)):
// two 32-byte big-endian words followed by the raw UTF-8 bytes of the URI.
// The URI carries no length prefix, which is only unambiguous while it stays
// the last packed field.
package voucher

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const wordSize = 32

// Pack returns the packed encoding of (tokenID, price, tokenURI).
func Pack(tokenID uint64, price *big.Int, tokenURI string) ([]byte, error) {
	if price == nil || price.Sign() < 0 || price.BitLen() > 256 {
		return nil, ErrValueOutOfRange
	}

	buf := make([]byte, 2*wordSize+len(tokenURI))
	new(big.Int).SetUint64(tokenID).FillBytes(buf[:wordSize])
	price.FillBytes(buf[wordSize : 2*wordSize])
	copy(buf[2*wordSize:], tokenURI)
	return buf, nil
}

// Hash returns the Keccak-256 digest of the packed voucher fields.
func Hash(tokenID uint64, price *big.Int, tokenURI string) (common.Hash, error) {
	packed, err := Pack(tokenID, price, tokenURI)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}
