package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const apiKeyHeader = "x-cg-pro-api-key"

// CoinGecko queries the /simple/price endpoint of the CoinGecko API.
type CoinGecko struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewCoinGecko creates a CoinGecko client. An empty apiKey uses the public tier.
func NewCoinGecko(baseURL, apiKey string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

// Quote fetches the USD price of one unit of currency.
func (c *CoinGecko) Quote(ctx context.Context, currency string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	symbol := normalize(currency)
	coinID, ok := CoinID(symbol)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}

	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", "usd")

	agent := fiber.Get(c.baseURL + "/simple/price")
	agent.QueryString(q.Encode())
	if c.apiKey != "" {
		agent.Set(apiKeyHeader, c.apiKey)
	}
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return decimal.Zero, fmt.Errorf("fetch %s price: %w", symbol, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return decimal.Zero, fmt.Errorf("fetch %s price: unexpected status %d", symbol, code)
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode %s price: %w", symbol, err)
	}

	usd, ok := payload[coinID]["usd"]
	if !ok || !usd.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}

	log.Debug().Str("currency", symbol).Str("usd", usd.String()).Msg("fetched currency price")
	return usd, nil
}
