package price

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// weiDecimals is the ETH/wei exponent.
const weiDecimals = 18

// weiThreshold separates wei integers from ETH decimals in catalog data:
// anything longer is already denominated in wei.
const weiThreshold = 10

// ErrInvalidAmount is returned for amounts that cannot be represented in wei.
var ErrInvalidAmount = errors.New("invalid amount")

// WeiToETH converts a wei amount to ETH.
func WeiToETH(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiDecimals)
}

// FormatETH renders wei as an ETH decimal string without trailing zeros.
func FormatETH(wei *big.Int) string {
	return WeiToETH(wei).String()
}

// ParseWei parses a non-negative base-10 wei integer.
func ParseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// NormalizePriceWei accepts either a wei integer or an ETH decimal and
// returns the price in wei. Strings longer than ten characters are wei.
func NormalizePriceWei(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if len(raw) > weiThreshold {
		return ParseWei(raw)
	}

	eth, err := decimal.NewFromString(raw)
	if err != nil || eth.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	wei := eth.Shift(weiDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, raw, weiDecimals)
	}
	return wei.BigInt(), nil
}

// Decimals returns the display precision of a currency: 8 for btc, 6 otherwise.
func Decimals(currency string) int32 {
	if normalize(currency) == "btc" {
		return 8
	}
	return 6
}

// USDToCrypto converts a USD amount into units of currency given its USD unit price.
func USDToCrypto(usd, unitPriceUSD decimal.Decimal, currency string) (string, error) {
	if !unitPriceUSD.IsPositive() {
		return "", fmt.Errorf("%w: %s", ErrPriceUnavailable, currency)
	}
	amount := usd.DivRound(unitPriceUSD, 18)
	return amount.StringFixed(Decimals(currency)), nil
}
