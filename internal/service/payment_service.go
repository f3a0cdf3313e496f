package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/lazymint/internal/metrics"
	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/price"
)

// nativeCurrency is the only currency the contract accepts as payment.
const nativeCurrency = "eth"

// PaymentRepositoryInterface defines the interface for payment intent storage.
type PaymentRepositoryInterface interface {
	Create(ctx context.Context, p *model.PaymentIntent) error
	Get(ctx context.Context, id string) (*model.PaymentIntent, error)
	Transition(ctx context.Context, id string, status model.PaymentStatus, txHash string, confirmedAt *time.Time) (*model.PaymentIntent, error)
}

// MintConfirmer records a redemption in the minted tracker.
type MintConfirmer interface {
	ConfirmMint(ctx context.Context, tokenID uint64, owner, txHash string) (*model.MintRecord, error)
}

// PaymentService quotes catalog prices in other currencies and tracks
// payment intents from creation to confirmation.
type PaymentService struct {
	nftRepo   NFTRepositoryInterface
	mintRepo  MintRepositoryInterface
	payments  PaymentRepositoryInterface
	minter    MintConfirmer
	quoter    price.Quoter
	network   string
	quoteTTL  time.Duration
	intentTTL time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// NewPaymentService creates a new PaymentService.
// minter is normally the VoucherService; m may be nil.
func NewPaymentService(
	nftRepo NFTRepositoryInterface,
	mintRepo MintRepositoryInterface,
	payments PaymentRepositoryInterface,
	minter MintConfirmer,
	quoter price.Quoter,
	network string,
	quoteTTL, intentTTL time.Duration,
	m *metrics.Metrics,
) *PaymentService {
	return &PaymentService{
		nftRepo:   nftRepo,
		mintRepo:  mintRepo,
		payments:  payments,
		minter:    minter,
		quoter:    quoter,
		network:   network,
		quoteTTL:  quoteTTL,
		intentTTL: intentTTL,
		metrics:   m,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Currencies lists every quotable currency with its USD price when available.
// Only ETH settles on chain; the others are informational.
func (s *PaymentService) Currencies(ctx context.Context) []model.Currency {
	symbols := price.Symbols()
	out := make([]model.Currency, 0, len(symbols))
	for _, sym := range symbols {
		c := model.Currency{
			Symbol:      strings.ToUpper(sym),
			Name:        price.Name(sym),
			IsSupported: sym == nativeCurrency,
		}
		if sym == nativeCurrency {
			c.Network = s.network
		}

		p, err := s.quoter.Quote(ctx, sym)
		s.metrics.PriceQuoted(sym, err == nil)
		if err != nil {
			log.Warn().Err(err).Str("currency", sym).Msg("currency price unavailable")
		} else {
			c.PriceUSD = p.String()
		}
		out = append(out, c)
	}
	return out
}

// Calculate converts a catalog item's price into currency.
// Returns:
//   - ErrUnsupportedCurrency for a symbol with no quote source
//   - ErrNFTNotFound if the token is not in the catalog
//   - ErrPriceUnavailable if the quote source fails
func (s *PaymentService) Calculate(ctx context.Context, req *model.CalculatePriceRequest) (*model.PriceQuote, error) {
	if req == nil || req.TokenID == 0 {
		return nil, ErrInvalidRequest
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	nft, err := s.getNFT(ctx, req.TokenID)
	if err != nil {
		return nil, err
	}
	conv, err := s.convert(ctx, nft, currency)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &model.PriceQuote{
		ID:         s.newID(),
		TokenID:    req.TokenID,
		Currency:   strings.ToUpper(currency),
		Amount:     conv.amount,
		AmountUSD:  conv.usd.StringFixed(2),
		PriceInETH: conv.eth.String(),
		ExpiresAt:  now.Add(s.quoteTTL),
	}, nil
}

// Create opens a pending payment intent for a catalog item that is not yet
// minted. The intent expires after the configured TTL.
// Returns:
//   - ErrInvalidRequest if tokenID is zero or buyer is not an address
//   - ErrUnsupportedCurrency for a symbol with no quote source
//   - ErrNFTNotFound if the token is not in the catalog
//   - ErrAlreadyMinted if the tracker reports the token minted
//   - ErrPriceUnavailable if the quote source fails
func (s *PaymentService) Create(ctx context.Context, req *model.CreatePaymentRequest) (*model.PaymentIntent, error) {
	if req == nil || req.TokenID == 0 || !common.IsHexAddress(req.Buyer) {
		return nil, ErrInvalidRequest
	}
	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	nft, err := s.getNFT(ctx, req.TokenID)
	if err != nil {
		return nil, err
	}
	minted, err := s.mintRepo.IsPresent(ctx, req.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check mint record: %w", err)
	}
	if minted {
		return nil, ErrAlreadyMinted
	}

	conv, err := s.convert(ctx, nft, currency)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &model.PaymentIntent{
		ID:            s.newID(),
		TokenID:       req.TokenID,
		Buyer:         strings.ToLower(req.Buyer),
		Currency:      strings.ToUpper(currency),
		Amount:        conv.amount,
		AmountUSD:     conv.usd.StringFixed(2),
		PaymentMethod: paymentMethod(currency),
		Status:        model.PaymentPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.intentTTL),
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.metrics.PaymentIntent(string(model.PaymentPending))
	log.Info().
		Str("payment_id", p.ID).
		Uint64("token_id", p.TokenID).
		Str("buyer", p.Buyer).
		Str("currency", p.Currency).
		Msg("payment intent created")
	return p, nil
}

// Status returns an intent, marking it expired first if it is still pending
// past its expiry.
func (s *PaymentService) Status(ctx context.Context, id string) (*model.PaymentIntent, error) {
	p, err := s.getPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.isLapsed(p) {
		return p, nil
	}
	return s.expire(ctx, p)
}

// Confirm applies a payment gateway notification to a pending intent.
// A confirmed notification records the mint through the MintConfirmer
// before the intent moves, so a tracker conflict leaves the intent pending.
// Repeating the notification that finalized an intent returns it unchanged.
// Returns:
//   - ErrInvalidRequest for a malformed id or a confirmation without a hash
//   - ErrPaymentNotFound if the id is unknown
//   - ErrPaymentExpired if a pending intent is past its expiry
//   - ErrPaymentFinalized if the intent already left pending
//   - errors from MintConfirmer.ConfirmMint, such as ErrAlreadyMinted
func (s *PaymentService) Confirm(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	switch req.Status {
	case model.PaymentConfirmed:
		if strings.TrimSpace(req.TransactionHash) == "" {
			return nil, ErrInvalidRequest
		}
	case model.PaymentFailed, model.PaymentExpired:
	default:
		return nil, ErrInvalidRequest
	}

	p, err := s.getPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentPending {
		if isRepeat(p, req) {
			return p, nil
		}
		return nil, ErrPaymentFinalized
	}
	if req.Status == model.PaymentConfirmed && s.isLapsed(p) {
		if _, err := s.expire(ctx, p); err != nil {
			return nil, err
		}
		return nil, ErrPaymentExpired
	}

	var confirmedAt *time.Time
	if req.Status == model.PaymentConfirmed {
		rec, err := s.minter.ConfirmMint(ctx, p.TokenID, p.Buyer, req.TransactionHash)
		if err != nil {
			return nil, err
		}
		confirmedAt = &rec.MintedAt
	}

	updated, err := s.payments.Transition(ctx, p.ID, req.Status, req.TransactionHash, confirmedAt)
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if updated == nil {
		// Lost a race with another notification; report what won.
		return s.finalized(ctx, req)
	}

	s.metrics.PaymentIntent(string(updated.Status))
	log.Info().
		Str("payment_id", updated.ID).
		Uint64("token_id", updated.TokenID).
		Str("status", string(updated.Status)).
		Str("tx_hash", updated.TransactionHash).
		Msg("payment intent updated")
	return updated, nil
}

func (s *PaymentService) finalized(ctx context.Context, req *model.PaymentWebhookRequest) (*model.PaymentIntent, error) {
	p, err := s.getPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if isRepeat(p, req) {
		return p, nil
	}
	return nil, ErrPaymentFinalized
}

// expire moves a lapsed intent to expired. If another writer moved it first,
// the stored row is returned.
func (s *PaymentService) expire(ctx context.Context, p *model.PaymentIntent) (*model.PaymentIntent, error) {
	updated, err := s.payments.Transition(ctx, p.ID, model.PaymentExpired, "", nil)
	if err != nil {
		return nil, fmt.Errorf("expire payment: %w", err)
	}
	if updated == nil {
		return s.getPayment(ctx, p.ID)
	}
	s.metrics.PaymentIntent(string(model.PaymentExpired))
	log.Info().Str("payment_id", p.ID).Uint64("token_id", p.TokenID).Msg("payment intent expired")
	return updated, nil
}

func (s *PaymentService) isLapsed(p *model.PaymentIntent) bool {
	return p.Status == model.PaymentPending && s.now().After(p.ExpiresAt)
}

func (s *PaymentService) getPayment(ctx context.Context, id string) (*model.PaymentIntent, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidRequest
	}
	p, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (s *PaymentService) getNFT(ctx context.Context, tokenID uint64) (*model.NFT, error) {
	nft, err := s.nftRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get nft: %w", err)
	}
	if nft == nil {
		return nil, ErrNFTNotFound
	}
	return nft, nil
}

type conversion struct {
	eth    decimal.Decimal
	usd    decimal.Decimal
	amount string
}

// convert prices nft in currency by way of its ETH and USD values.
func (s *PaymentService) convert(ctx context.Context, nft *model.NFT, currency string) (*conversion, error) {
	wei, err := price.ParseWei(nft.PriceWei)
	if err != nil {
		return nil, fmt.Errorf("catalog price of token %d: %w", nft.TokenID, err)
	}
	eth := price.WeiToETH(wei)

	ethUSD, err := s.quote(ctx, nativeCurrency)
	if err != nil {
		return nil, err
	}
	usd := eth.Mul(ethUSD)

	amount := eth.String()
	if currency != nativeCurrency {
		unit, err := s.quote(ctx, currency)
		if err != nil {
			return nil, err
		}
		amount, err = price.USDToCrypto(usd, unit, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPriceUnavailable, err)
		}
	}
	return &conversion{eth: eth, usd: usd, amount: amount}, nil
}

func (s *PaymentService) quote(ctx context.Context, currency string) (decimal.Decimal, error) {
	p, err := s.quoter.Quote(ctx, currency)
	s.metrics.PriceQuoted(currency, err == nil)
	if err != nil {
		if errors.Is(err, price.ErrUnknownCurrency) {
			return decimal.Zero, ErrUnsupportedCurrency
		}
		return decimal.Zero, fmt.Errorf("%w: quote %s: %w", ErrPriceUnavailable, currency, err)
	}
	return p, nil
}

func normalizeCurrency(symbol string) (string, error) {
	currency := strings.ToLower(strings.TrimSpace(symbol))
	if !price.IsSupported(currency) {
		return "", ErrUnsupportedCurrency
	}
	return currency, nil
}

// paymentMethod names the settlement rail for a currency.
func paymentMethod(currency string) string {
	switch currency {
	case "eth", "btc", "usdt", "usdc":
		return currency
	}
	return "other"
}

// isRepeat reports whether req is the notification that finalized p.
func isRepeat(p *model.PaymentIntent, req *model.PaymentWebhookRequest) bool {
	if p.Status != req.Status {
		return false
	}
	return req.Status != model.PaymentConfirmed || strings.EqualFold(p.TransactionHash, req.TransactionHash)
}
