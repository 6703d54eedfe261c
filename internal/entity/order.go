package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string
type OrderKind string
type OrderStatus string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	OrderKindLimit     OrderKind = "LIMIT"
	OrderKindMarket    OrderKind = "MARKET"
	OrderKindStopLimit OrderKind = "STOP_LIMIT"

	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

func (k OrderKind) Valid() bool {
	return k == OrderKindLimit || k == OrderKindMarket || k == OrderKindStopLimit
}

// OrderRequest is the immutable snapshot produced by form validation and
// handed to the lifecycle manager. Price is zero for market orders.
type OrderRequest struct {
	Pair   string
	Kind   OrderKind
	Side   OrderSide
	Price  decimal.Decimal
	Amount decimal.Decimal
}

func (r OrderRequest) IsMarket() bool {
	return r.Kind == OrderKindMarket
}

type Order struct {
	ID           string
	Pair         string
	Kind         OrderKind
	Side         OrderSide
	LimitPrice   decimal.Decimal
	Amount       decimal.Decimal
	FilledAmount decimal.Decimal
	Total        decimal.Decimal
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (o Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// Terminal statuses never transition again.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// OrderListing is the result of an order query. LoginRequired is a sentinel
// for the view layer, not an error: the caller renders a login prompt.
type OrderListing struct {
	LoginRequired bool
	Orders        []Order
}

// OrderAck is the exchange backend's acknowledgement of a submission.
type OrderAck struct {
	OrderID string
	AckedAt time.Time
}
