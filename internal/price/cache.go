package price

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
)

// CachedQuoter memoizes another Quoter's answers for a fixed TTL.
// Failed lookups are not cached.
type CachedQuoter struct {
	next  Quoter
	cache *expirable.LRU[string, decimal.Decimal]
}

// NewCachedQuoter wraps next with an LRU of at most size entries.
func NewCachedQuoter(next Quoter, size int, ttl time.Duration) *CachedQuoter {
	if size <= 0 {
		size = len(currencies)
	}
	return &CachedQuoter{
		next:  next,
		cache: expirable.NewLRU[string, decimal.Decimal](size, nil, ttl),
	}
}

// Quote returns the cached price or asks the wrapped Quoter.
func (c *CachedQuoter) Quote(ctx context.Context, currency string) (decimal.Decimal, error) {
	key := normalize(currency)
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}

	p, err := c.next.Quote(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	c.cache.Add(key, p)
	return p, nil
}

// Purge drops every cached price.
func (c *CachedQuoter) Purge() {
	c.cache.Purge()
}
