package marketdata

import (
	"testing"

	"github.com/ghalbir/trading-client/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SeedAndBestPrice(t *testing.T) {
	c := NewCache()
	c.Seed([]config.MarketConfig{
		{Pair: "GBR/USDT", LastPrice: decimal.RequireFromString("100.25")},
		{Pair: "GBR/BTC", LastPrice: decimal.RequireFromString("0.00325")},
	})

	price, ok := c.BestPrice("GBR/USDT")
	require.True(t, ok)
	assert.Equal(t, "100.25", price.String())

	_, ok = c.BestPrice("GBR/ETH")
	assert.False(t, ok)
}

func TestCache_UpdateLastPriceKeepsDayFields(t *testing.T) {
	c := NewCache()
	c.Seed([]config.MarketConfig{{
		Pair:      "GBR/USDT",
		LastPrice: decimal.RequireFromString("100.25"),
		High24h:   decimal.RequireFromString("102.50"),
	}})

	c.UpdateLastPrice("GBR/USDT", decimal.RequireFromString("101.00"))

	tickers := c.Tickers()
	require.Len(t, tickers, 1)
	assert.Equal(t, "101", tickers[0].LastPrice.String())
	assert.Equal(t, "102.5", tickers[0].High24h.String())
}

func TestParseTickerPrice(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantOK  bool
	}{
		{"ticker event", `{"e":"24hrTicker","s":"GBRUSDT","c":"100.30"}`, true},
		{"other event", `{"e":"kline","s":"GBRUSDT","c":"100.30"}`, false},
		{"missing price", `{"e":"24hrTicker","s":"GBRUSDT"}`, false},
		{"bad price", `{"e":"24hrTicker","s":"GBRUSDT","c":"n/a"}`, false},
		{"not json", `nope`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbol, price, ok := parseTickerPrice([]byte(tt.message))
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, "GBRUSDT", symbol)
				assert.Equal(t, "100.3", price.String())
			}
		})
	}
}
