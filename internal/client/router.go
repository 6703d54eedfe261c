package client

import (
	"errors"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/service/orderform"
	"github.com/shopspring/decimal"
)

var ErrUnknownPage = errors.New("unknown page")

const (
	PageDashboard = "dashboard"
	PageMarkets   = "markets"
	PageTrade     = "trade"
	PageWallet    = "wallet"
	PageOrders    = "orders"
	PageHistory   = "history"
)

// PageData is everything a page needs to render. Only the fields relevant to
// the requested page are populated.
type PageData struct {
	Page          string
	Tickers       []entity.Ticker
	Form          *orderform.Snapshot
	OpenOrders    *entity.OrderListing
	History       *entity.OrderListing
	Balances      map[string]decimal.Decimal
	Notifications []entity.Notification
}

// TickerSource is the market-data dependency of the router.
type TickerSource interface {
	entity.PriceSource
	Tickers() []entity.Ticker
}

// Router maps a requested page name to the queries that populate it.
type Router struct {
	app     *App
	tickers TickerSource
}

func NewRouter(app *App, tickers TickerSource) *Router {
	return &Router{app: app, tickers: tickers}
}

func (r *Router) LoadPage(page string) (*PageData, error) {
	data := &PageData{
		Page:          page,
		Notifications: r.app.Notifications.Active(),
	}

	switch page {
	case PageDashboard, PageMarkets:
		data.Tickers = r.tickers.Tickers()
	case PageTrade:
		data.Tickers = r.tickers.Tickers()
		snapshot := r.app.Form().Snapshot()
		data.Form = &snapshot
		open := r.app.Lifecycle.ListOpenOrders(snapshot.Pair, r.app.Session)
		data.OpenOrders = &open
	case PageWallet:
		data.Balances = r.app.Balances()
	case PageOrders:
		open := r.app.Lifecycle.ListOpenOrders("", r.app.Session)
		history := r.app.Lifecycle.ListHistory("", r.app.Session)
		data.OpenOrders = &open
		data.History = &history
	case PageHistory:
		history := r.app.Lifecycle.ListHistory("", r.app.Session)
		data.History = &history
	default:
		return nil, ErrUnknownPage
	}

	return data, nil
}
