package client

import (
	"context"
	"testing"
	"time"

	"github.com/ghalbir/trading-client/internal/config"
	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/service/exchange"
	"github.com/ghalbir/trading-client/internal/service/identity"
	"github.com/ghalbir/trading-client/internal/service/lifecycle"
	"github.com/ghalbir/trading-client/internal/service/marketdata"
	"github.com/ghalbir/trading-client/internal/service/notification"
	"github.com/ghalbir/trading-client/internal/service/orderform"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	app    *App
	router *Router
	cache  *marketdata.Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cache := marketdata.NewCache()
	cache.Seed([]config.MarketConfig{{Pair: "GBR/USDT", LastPrice: d("100.25")}})

	manager := lifecycle.NewManager(exchange.NewSimGateway(), nil)
	idSvc := identity.NewService(identity.NewUserStore(), identity.NewMemoryTokenStore(), "test-key", "ghalbir", time.Hour)

	app := NewApp(Config{
		Pair:                   "GBR/USDT",
		FallbackReferencePrice: d("100"),
		Identity:               idSvc,
		Prices:                 cache,
		Lifecycle:              manager,
		Notifications:          notification.NewQueue(),
		Filler:                 exchange.NewFiller(manager, cache, 0),
		Balances: map[string]decimal.Decimal{
			"GBR":  d("10"),
			"USDT": d("1000"),
		},
	})

	return &fixture{app: app, router: NewRouter(app, cache), cache: cache}
}

func registerAndLogin(t *testing.T, app *App) *entity.AuthResult {
	t.Helper()

	result, err := app.Register(context.Background(), "user@example.com", "secret123", "secret123", "Demo User")
	require.NoError(t, err)

	return result
}

func TestPlaceOrder_RequiresLogin(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.app.Form().SetPrice("99.50"))
	require.NoError(t, f.app.Form().SetAmount("1.0"))

	_, err := f.app.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, lifecycle.ErrNotAuthenticated)

	listing := f.app.Lifecycle.ListHistory("", f.app.Session)
	assert.True(t, listing.LoginRequired)
}

func TestPlaceOrder_SuccessResetsForm(t *testing.T) {
	f := newFixture(t)
	registerAndLogin(t, f.app)

	require.NoError(t, f.app.Form().SetPrice("99.50"))
	require.NoError(t, f.app.Form().SetAmount("1.0"))

	order, err := f.app.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusOpen, order.Status)
	assert.Equal(t, "99.5", order.Total.String())

	snap := f.app.Form().Snapshot()
	assert.Equal(t, "", snap.AmountInput)
	assert.Equal(t, "", snap.PriceInput)

	open := f.app.Lifecycle.ListOpenOrders("GBR/USDT", f.app.Session)
	require.Len(t, open.Orders, 1)
}

func TestPlaceOrder_ValidationErrorLeavesFormUntouched(t *testing.T) {
	f := newFixture(t)
	registerAndLogin(t, f.app)

	require.NoError(t, f.app.Form().SetPrice("99.50"))
	require.NoError(t, f.app.Form().SetAmount("-1"))

	_, err := f.app.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, orderform.ErrInvalidAmount)

	snap := f.app.Form().Snapshot()
	assert.Equal(t, "-1", snap.AmountInput)
	assert.Equal(t, "99.50", snap.PriceInput)
}

func TestPlaceOrder_MarketOrderAutoFills(t *testing.T) {
	f := newFixture(t)
	registerAndLogin(t, f.app)

	f.app.Form().SetKind(entity.OrderKindMarket)
	require.NoError(t, f.app.Form().SetAmount("0.5"))

	order, err := f.app.PlaceOrder(context.Background())
	require.NoError(t, err)

	history := f.app.Lifecycle.ListHistory("", f.app.Session).Orders
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
	assert.Equal(t, entity.OrderStatusFilled, history[0].Status)
	assert.Equal(t, "100.25", history[0].LimitPrice.String())
}

func TestApplyPercent_UsesLiveBestPrice(t *testing.T) {
	f := newFixture(t)

	// 1000 USDT * 50% / 100.25
	require.NoError(t, f.app.ApplyPercent(50))
	assert.Equal(t, "4.9875", f.app.Form().Snapshot().AmountInput)
}

func TestApplyPercent_FallbackWhenNoFeed(t *testing.T) {
	cache := marketdata.NewCache()
	manager := lifecycle.NewManager(exchange.NewSimGateway(), nil)
	idSvc := identity.NewService(identity.NewUserStore(), identity.NewMemoryTokenStore(), "test-key", "ghalbir", time.Hour)

	app := NewApp(Config{
		Pair:                   "GBR/USDT",
		FallbackReferencePrice: d("100"),
		Identity:               idSvc,
		Prices:                 cache,
		Lifecycle:              manager,
		Notifications:          notification.NewQueue(),
		Balances:               map[string]decimal.Decimal{"USDT": d("1000")},
	})

	require.NoError(t, app.ApplyPercent(50))
	assert.Equal(t, "5.0000", app.Form().Snapshot().AmountInput)
}

func TestLogout_ResetsAppState(t *testing.T) {
	f := newFixture(t)
	result := registerAndLogin(t, f.app)

	require.NoError(t, f.app.Form().SetPrice("99.50"))
	require.NoError(t, f.app.Form().SetAmount("1.0"))
	_, err := f.app.PlaceOrder(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.app.Logout(context.Background(), result.Token))

	assert.False(t, f.app.Session.IsAuthenticated())
	assert.True(t, f.app.Lifecycle.ListOpenOrders("", f.app.Session).LoginRequired)

	// The credential was revoked, not just forgotten.
	assert.Error(t, f.app.ValidateToken(context.Background(), result.Token))

	snap := f.app.Form().Snapshot()
	assert.Equal(t, "", snap.PriceInput)
	assert.Equal(t, entity.OrderSideBuy, snap.Side)
}

func TestRouter_LoadPage(t *testing.T) {
	f := newFixture(t)
	registerAndLogin(t, f.app)

	t.Run("markets", func(t *testing.T) {
		data, err := f.router.LoadPage(PageMarkets)
		require.NoError(t, err)
		require.Len(t, data.Tickers, 1)
		assert.Equal(t, "GBR/USDT", data.Tickers[0].Pair)
	})

	t.Run("trade", func(t *testing.T) {
		data, err := f.router.LoadPage(PageTrade)
		require.NoError(t, err)
		require.NotNil(t, data.Form)
		require.NotNil(t, data.OpenOrders)
		assert.False(t, data.OpenOrders.LoginRequired)
	})

	t.Run("wallet", func(t *testing.T) {
		data, err := f.router.LoadPage(PageWallet)
		require.NoError(t, err)
		assert.Equal(t, "1000", data.Balances["USDT"].String())
	})

	t.Run("orders and history", func(t *testing.T) {
		data, err := f.router.LoadPage(PageOrders)
		require.NoError(t, err)
		require.NotNil(t, data.OpenOrders)
		require.NotNil(t, data.History)
	})

	t.Run("unknown page", func(t *testing.T) {
		_, err := f.router.LoadPage("settings-nope")
		assert.ErrorIs(t, err, ErrUnknownPage)
	})
}

func TestNotificationsReportOutcomes(t *testing.T) {
	f := newFixture(t)
	registerAndLogin(t, f.app)

	require.NoError(t, f.app.Form().SetPrice("99.50"))
	require.NoError(t, f.app.Form().SetAmount("1.0"))
	_, err := f.app.PlaceOrder(context.Background())
	require.NoError(t, err)

	messages := make([]string, 0)
	for _, n := range f.app.Notifications.Active() {
		messages = append(messages, n.Message)
	}

	assert.Contains(t, messages, "Registration successful")
	assert.Contains(t, messages, "Buy order placed successfully")
}
