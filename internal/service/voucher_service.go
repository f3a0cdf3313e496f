package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/lazymint/internal/metrics"
	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/price"
	"github.com/fairyhunter13/lazymint/internal/voucher"
)

// VoucherSigner signs vouchers for the collection's authorized signer.
type VoucherSigner interface {
	Address() common.Address
	Sign(tokenID uint64, price *big.Int, tokenURI string) (voucher.Voucher, error)
}

// MintStatusReader reports on-chain mint status. Answers are advisory.
type MintStatusReader interface {
	IsMinted(ctx context.Context, tokenID uint64) (bool, error)
}

// VoucherService issues signed vouchers for catalog items and keeps the
// advisory minted tracker. The contract remains the authority on redemption.
type VoucherService struct {
	nftRepo  NFTRepositoryInterface
	mintRepo MintRepositoryInterface
	signer   VoucherSigner
	verifier *voucher.Verifier
	chain    MintStatusReader
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewVoucherService creates a new VoucherService.
// signer may be nil, in which case issuing fails with ErrSignerUnavailable.
// chain and m may be nil.
func NewVoucherService(nftRepo NFTRepositoryInterface, mintRepo MintRepositoryInterface, signer VoucherSigner, chain MintStatusReader, m *metrics.Metrics) *VoucherService {
	s := &VoucherService{
		nftRepo:  nftRepo,
		mintRepo: mintRepo,
		signer:   signer,
		chain:    chain,
		metrics:  m,
		now:      time.Now,
	}
	if signer != nil {
		s.verifier = voucher.NewVerifier(signer.Address())
	}
	return s
}

// SignerAddress returns the address vouchers are signed with, or the zero address.
func (s *VoucherService) SignerAddress() common.Address {
	if s.signer == nil {
		return common.Address{}
	}
	return s.signer.Address()
}

// IssueVoucher signs a voucher for a catalog item that is not yet minted.
// Returns:
//   - ErrInvalidRequest if tokenID is zero or buyer is not an address
//   - ErrNFTNotFound if the token is not in the catalog
//   - ErrAlreadyMinted if the tracker or the chain reports the token minted
//   - ErrSignerUnavailable if no signing key is configured
//
// The voucher is a bearer instrument; buyer is recorded in logs only.
func (s *VoucherService) IssueVoucher(ctx context.Context, tokenID uint64, buyer string) (*voucher.Voucher, error) {
	if tokenID == 0 || !common.IsHexAddress(buyer) {
		s.metrics.VoucherRejected("invalid_request")
		return nil, ErrInvalidRequest
	}
	if s.signer == nil {
		s.metrics.VoucherRejected("no_signer")
		return nil, ErrSignerUnavailable
	}

	nft, err := s.nftRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get nft: %w", err)
	}
	if nft == nil {
		s.metrics.VoucherRejected("not_found")
		return nil, ErrNFTNotFound
	}

	minted, err := s.isMinted(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if minted {
		s.metrics.VoucherRejected("already_minted")
		return nil, ErrAlreadyMinted
	}

	priceWei, err := price.ParseWei(nft.PriceWei)
	if err != nil {
		return nil, fmt.Errorf("catalog price of token %d: %w", tokenID, err)
	}

	v, err := s.signer.Sign(tokenID, priceWei, nft.Metadata)
	if err != nil {
		return nil, fmt.Errorf("sign voucher: %w", err)
	}

	s.metrics.VoucherIssued()
	log.Info().
		Uint64("token_id", tokenID).
		Str("buyer", strings.ToLower(buyer)).
		Str("price_wei", priceWei.String()).
		Msg("voucher issued")
	return &v, nil
}

// isMinted consults the tracker, then the chain when a reader is configured.
// Chain errors are logged and ignored.
func (s *VoucherService) isMinted(ctx context.Context, tokenID uint64) (bool, error) {
	present, err := s.mintRepo.IsPresent(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("check mint record: %w", err)
	}
	if present || s.chain == nil {
		return present, nil
	}

	onChain, err := s.chain.IsMinted(ctx, tokenID)
	if err != nil {
		log.Warn().Err(err).Uint64("token_id", tokenID).Msg("on-chain mint status unavailable")
		return false, nil
	}
	return onChain, nil
}

// ConfirmMint records a token as minted after a successful redemption.
// Repeating a confirmation with the same owner and transaction hash returns
// the stored record. A conflicting confirmation returns ErrAlreadyMinted.
func (s *VoucherService) ConfirmMint(ctx context.Context, tokenID uint64, owner, txHash string) (*model.MintRecord, error) {
	if tokenID == 0 || !common.IsHexAddress(owner) || strings.TrimSpace(txHash) == "" {
		return nil, ErrInvalidRequest
	}

	nft, err := s.nftRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get nft: %w", err)
	}
	if nft == nil {
		return nil, ErrNFTNotFound
	}

	rec := &model.MintRecord{
		TokenID:         tokenID,
		Owner:           strings.ToLower(owner),
		TransactionHash: strings.ToLower(txHash),
		MintedAt:        s.now().UTC(),
	}

	err = s.mintRepo.Set(ctx, rec)
	if err == nil {
		s.metrics.MintConfirmed()
		log.Info().Uint64("token_id", tokenID).Str("owner", rec.Owner).Str("tx_hash", rec.TransactionHash).Msg("mint confirmed")
		return rec, nil
	}
	if !errors.Is(err, ErrAlreadyMinted) {
		return nil, fmt.Errorf("record mint: %w", err)
	}

	existing, getErr := s.mintRepo.Get(ctx, tokenID)
	if getErr != nil {
		return nil, fmt.Errorf("get mint record: %w", getErr)
	}
	if existing != nil &&
		strings.EqualFold(existing.Owner, rec.Owner) &&
		strings.EqualFold(existing.TransactionHash, rec.TransactionHash) {
		return existing, nil
	}
	return nil, ErrAlreadyMinted
}

// VerifyVoucher checks that a voucher carries a valid signature from the
// configured signer. It does not consult the contract's consumption marker.
func (s *VoucherService) VerifyVoucher(ctx context.Context, v voucher.Voucher) (*model.VerifyResponse, error) {
	if s.verifier == nil {
		return nil, ErrSignerUnavailable
	}

	resp := &model.VerifyResponse{Signer: s.verifier.Expected().Hex()}

	recovered, err := voucher.Recover(v)
	switch {
	case err != nil:
		resp.Message = err.Error()
	case !s.verifier.Verify(v):
		resp.Message = fmt.Sprintf("signed by %s", recovered.Hex())
	default:
		resp.Valid = true
	}

	if v.TokenID != 0 {
		minted, err := s.mintRepo.IsPresent(ctx, v.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check mint record: %w", err)
		}
		resp.Minted = minted
	}
	return resp, nil
}
