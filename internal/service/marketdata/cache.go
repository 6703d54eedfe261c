package marketdata

import (
	"sync"
	"time"

	"github.com/ghalbir/trading-client/internal/config"
	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/shopspring/decimal"
)

// Cache is the read-only market data input for the rest of the system: the
// current best price per pair plus the ticker rows the markets table renders.
type Cache struct {
	mu      sync.RWMutex
	tickers map[string]entity.Ticker
	order   []string
}

func NewCache() *Cache {
	return &Cache{tickers: make(map[string]entity.Ticker)}
}

// Seed loads the configured market list, typically used when no live feed is
// wired.
func (c *Cache) Seed(markets []config.MarketConfig) {
	for _, m := range markets {
		c.Apply(entity.Ticker{
			Pair:      m.Pair,
			LastPrice: m.LastPrice,
			Change24h: m.Change24h,
			High24h:   m.High24h,
			Low24h:    m.Low24h,
			Volume24h: m.Volume24h,
			UpdatedAt: time.Now().UTC(),
		})
	}
}

func (c *Cache) Apply(ticker entity.Ticker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tickers[ticker.Pair]; !exists {
		c.order = append(c.order, ticker.Pair)
	}
	c.tickers[ticker.Pair] = ticker
}

// UpdateLastPrice moves only the last price, keeping the 24h fields.
func (c *Cache) UpdateLastPrice(pair string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker, exists := c.tickers[pair]
	if !exists {
		c.order = append(c.order, pair)
		ticker = entity.Ticker{Pair: pair}
	}

	ticker.LastPrice = price
	ticker.UpdatedAt = time.Now().UTC()
	c.tickers[pair] = ticker
}

func (c *Cache) BestPrice(pair string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ticker, ok := c.tickers[pair]
	if !ok || !ticker.LastPrice.IsPositive() {
		return decimal.Zero, false
	}

	return ticker.LastPrice, true
}

// Tickers returns all known markets in first-seen order.
func (c *Cache) Tickers() []entity.Ticker {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entity.Ticker, 0, len(c.order))
	for _, pair := range c.order {
		out = append(out, c.tickers[pair])
	}

	return out
}
