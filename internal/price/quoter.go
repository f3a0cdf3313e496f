// Package price quotes payment currencies in USD and converts token prices
// between wei, ETH and other currencies.
package price

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCurrency is returned for a symbol with no quote source.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrPriceUnavailable is returned when the source has no usable USD price.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Quoter returns the USD price of one unit of a currency.
type Quoter interface {
	Quote(ctx context.Context, currency string) (decimal.Decimal, error)
}

type currencyInfo struct {
	coinID string
	name   string
}

var currencies = map[string]currencyInfo{
	"eth":   {coinID: "ethereum", name: "Ethereum"},
	"btc":   {coinID: "bitcoin", name: "Bitcoin"},
	"usdt":  {coinID: "tether", name: "Tether"},
	"usdc":  {coinID: "usd-coin", name: "USD Coin"},
	"matic": {coinID: "matic-network", name: "Polygon"},
	"bnb":   {coinID: "binancecoin", name: "BNB"},
}

// Symbols returns the supported lowercase currency symbols in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(currencies))
	for s := range currencies {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether a currency symbol can be quoted. Case-insensitive.
func IsSupported(symbol string) bool {
	_, ok := currencies[normalize(symbol)]
	return ok
}

// CoinID maps a symbol to its CoinGecko id.
func CoinID(symbol string) (string, bool) {
	info, ok := currencies[normalize(symbol)]
	return info.coinID, ok
}

// Name returns the display name of a symbol, or the uppercased symbol.
func Name(symbol string) string {
	if info, ok := currencies[normalize(symbol)]; ok {
		return info.name
	}
	return strings.ToUpper(symbol)
}

func normalize(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}
