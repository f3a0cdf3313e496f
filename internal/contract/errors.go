package contract

import "errors"

// Rejection reasons. A call that returns one of these left no state behind.
var (
	// ErrInvalidSignature is returned when a voucher was not signed by the authorized signer
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInsufficientPayment is returned when the attached value is below the voucher price
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrVoucherAlreadyUsed is returned when a voucher has already been redeemed
	ErrVoucherAlreadyUsed = errors.New("voucher already used")

	// ErrMaxSupplyReached is returned when the collection is fully minted
	ErrMaxSupplyReached = errors.New("max supply reached")

	// ErrNotOwner is returned when a non-owner calls an owner-only operation
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrTokenAlreadyMinted is returned when the token id already has a mint record
	ErrTokenAlreadyMinted = errors.New("token already minted")

	// ErrTransferFailed is returned when moving funds out of the contract fails
	ErrTransferFailed = errors.New("transfer failed")

	// ErrInsufficientFunds is returned when the caller cannot cover the attached value
	ErrInsufficientFunds = errors.New("insufficient funds for attached value")

	// ErrLengthMismatch is returned when batch mint argument lengths differ
	ErrLengthMismatch = errors.New("recipients and uris length mismatch")

	// ErrInvalidRecipient is returned when minting to the zero address
	ErrInvalidRecipient = errors.New("mint to the zero address")

	// ErrNonexistentToken is returned by views for tokens without a mint record
	ErrNonexistentToken = errors.New("nonexistent token")

	// ErrInvalidConfig is returned when a collection is deployed with unusable parameters
	ErrInvalidConfig = errors.New("invalid collection config")
)
