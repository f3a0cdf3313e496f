package voucher

import "errors"

var (
	// ErrNoSigningKey is returned when a signer is used without a private key
	ErrNoSigningKey = errors.New("no signing key configured")

	// ErrInvalidSigningKey is returned when the configured key cannot be parsed
	ErrInvalidSigningKey = errors.New("invalid secp256k1 private key")

	// ErrValueOutOfRange is returned when a numeric field does not fit in a uint256
	ErrValueOutOfRange = errors.New("value out of uint256 range")

	// ErrInvalidTokenID is returned when signing a voucher for token id 0
	ErrInvalidTokenID = errors.New("token id must be positive")

	// ErrInvalidSignatureLength is returned when a signature is not 65 bytes
	ErrInvalidSignatureLength = errors.New("signature must be 65 bytes")

	// ErrMalformedSignature is returned when r, s or v are outside the accepted ranges
	ErrMalformedSignature = errors.New("malformed signature")
)
