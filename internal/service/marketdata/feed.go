package marketdata

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/ghalbir/trading-client/internal/config"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const feedPingInterval = 2 * time.Minute

// Feed streams last-trade prices from an exchange websocket into the cache.
// The core treats the feed as a read-only input; losing it only freezes the
// displayed prices.
type Feed struct {
	cfg   config.MarketFeedConfig
	cache *Cache
}

func NewFeed(cfg config.MarketFeedConfig, cache *Cache) *Feed {
	return &Feed{cfg: cfg, cache: cache}
}

// Run dials the feed and pumps messages until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	wsHost, err := url.Parse(f.cfg.URL)
	if err != nil {
		return err
	}

	logrus.Infof("connecting to market feed %s", wsHost.String())

	c, _, err := websocket.DefaultDialer.Dial(wsHost.String(), nil)
	if err != nil {
		logrus.Error(err)
		return err
	}
	defer c.Close()

	c.SetPongHandler(func(string) error {
		return nil
	})

	symbols := make([]string, 0, len(f.cfg.Pairs))
	for _, symbol := range f.cfg.Pairs {
		symbols = append(symbols, strings.ToLower(symbol)+"@ticker")
	}

	initSub := map[string]any{
		"method": "SUBSCRIBE",
		"params": symbols,
		"id":     1,
	}
	if err := c.WriteJSON(initSub); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(feedPingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					logrus.Error(err)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			_, message, err := c.ReadMessage()
			if err != nil {
				logrus.Error(err)
				return err
			}

			f.handleMessage(message)
		}
	}
}

func (f *Feed) handleMessage(message []byte) {
	symbol, price, ok := parseTickerPrice(message)
	if !ok {
		return
	}

	pair, ok := f.pairForSymbol(symbol)
	if !ok {
		return
	}

	f.cache.UpdateLastPrice(pair, price)
}

func (f *Feed) pairForSymbol(symbol string) (string, bool) {
	for pair, feedSymbol := range f.cfg.Pairs {
		if strings.EqualFold(feedSymbol, symbol) {
			return pair, true
		}
	}

	return "", false
}

func parseTickerPrice(message []byte) (string, decimal.Decimal, bool) {
	var payload struct {
		Event  string `json:"e"`
		Symbol string `json:"s"`
		Last   string `json:"c"`
	}

	if err := json.Unmarshal(message, &payload); err != nil {
		return "", decimal.Zero, false
	}

	if payload.Event != "24hrTicker" || payload.Symbol == "" || payload.Last == "" {
		return "", decimal.Zero, false
	}

	price, err := decimal.NewFromString(payload.Last)
	if err != nil {
		return "", decimal.Zero, false
	}

	return payload.Symbol, price, true
}
