package service

import "errors"

var (
	// ErrNFTNotFound is returned when a token id is not in the catalog
	ErrNFTNotFound = errors.New("nft not found")

	// ErrAlreadyMinted is returned when a token is already recorded as minted
	ErrAlreadyMinted = errors.New("nft already minted")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnsupportedCurrency is returned when a currency cannot be quoted
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrSignerUnavailable is returned when the server has no signing key configured
	ErrSignerUnavailable = errors.New("voucher signer unavailable")

	// ErrPriceUnavailable is returned when the quote source fails
	ErrPriceUnavailable = errors.New("price source unavailable")

	// ErrPaymentNotFound is returned when a payment id is unknown
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentExpired is returned when confirming an intent past its expiry
	ErrPaymentExpired = errors.New("payment expired")

	// ErrPaymentFinalized is returned when an intent has already left pending
	ErrPaymentFinalized = errors.New("payment already finalized")
)
