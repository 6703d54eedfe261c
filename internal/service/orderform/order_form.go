package orderform

import (
	"errors"
	"sync"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/util"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidSide      = errors.New("invalid order side")
	ErrInvalidKind      = errors.New("invalid order kind")
	ErrPriceNotEditable = errors.New("price is not editable for market orders")
	ErrInvalidPercent   = errors.New("percent must be between 0 and 100")
	ErrNoReferencePrice = errors.New("no reference price available")
)

var oneHundred = decimal.NewFromInt(100)

// Engine owns the order-entry form state: side and kind selection, raw field
// input, and the derived total. Raw input is preserved verbatim for display;
// derived computation treats non-numeric input as zero.
type Engine struct {
	mu sync.Mutex

	pair string
	side entity.OrderSide
	kind entity.OrderKind

	priceRaw  string
	amountRaw string
	price     decimal.Decimal
	amount    decimal.Decimal
	total     decimal.Decimal
}

// Snapshot is what the view layer renders.
type Snapshot struct {
	Pair          string
	Side          entity.OrderSide
	Kind          entity.OrderKind
	PriceInput    string
	AmountInput   string
	TotalDisplay  string
	PriceEditable bool
}

func NewEngine(pair string) *Engine {
	return &Engine{
		pair: pair,
		side: entity.OrderSideBuy,
		kind: entity.OrderKindLimit,
	}
}

func (e *Engine) SetSide(side entity.OrderSide) error {
	if !side.Valid() {
		return ErrInvalidSide
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.side = side

	return nil
}

// SetKind switches the order kind. Entering Market forces the price field to
// the market-price marker and makes it non-editable; leaving Market clears
// the price and restores editability.
func (e *Engine) SetKind(kind entity.OrderKind) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.kind == kind {
		return nil
	}

	e.kind = kind
	if kind == entity.OrderKindMarket {
		e.priceRaw = util.MarketPriceMarker
		e.price = decimal.Zero
	} else {
		e.priceRaw = ""
		e.price = decimal.Zero
	}

	e.recomputeTotal()

	return nil
}

func (e *Engine) SetPrice(raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.kind == entity.OrderKindMarket {
		return ErrPriceNotEditable
	}

	e.priceRaw = raw
	e.price = util.ParseInput(raw)
	e.recomputeTotal()

	return nil
}

func (e *Engine) SetAmount(raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.amountRaw = raw
	e.amount = util.ParseInput(raw)
	e.recomputeTotal()

	return nil
}

// ApplyPercent sizes the amount as a percentage of the available balance.
// Buy spends the quote balance at the reference price, Sell takes a slice of
// the base balance. The entered price wins as reference; referencePrice is
// the caller-supplied fallback for when none is entered. The computed amount
// is kept at full precision, only its display string is rounded.
func (e *Engine) ApplyPercent(percent int, baseBalance, quoteBalance, referencePrice decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if percent < 0 || percent > 100 {
		return ErrInvalidPercent
	}

	fraction := decimal.NewFromInt(int64(percent)).Div(oneHundred)

	switch e.side {
	case entity.OrderSideSell:
		e.amount = baseBalance.Mul(fraction)
	default:
		ref := e.price
		if !ref.IsPositive() {
			ref = referencePrice
		}
		if !ref.IsPositive() {
			return ErrNoReferencePrice
		}

		e.amount = quoteBalance.Mul(fraction).Div(ref)
	}

	e.amountRaw = util.FormatAmount(e.amount)
	e.recomputeTotal()

	return nil
}

// Validate checks the current input and returns an immutable request
// snapshot. Market orders skip price validation.
func (e *Engine) Validate() (entity.OrderRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.amount.IsPositive() {
		return entity.OrderRequest{}, ErrInvalidAmount
	}

	if e.kind != entity.OrderKindMarket && !e.price.IsPositive() {
		return entity.OrderRequest{}, ErrInvalidPrice
	}

	return entity.OrderRequest{
		Pair:   e.pair,
		Kind:   e.kind,
		Side:   e.side,
		Price:  e.price,
		Amount: e.amount,
	}, nil
}

// Reset clears the editable fields after a successful submission. Side and
// kind are sticky across resets.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.amountRaw = ""
	e.amount = decimal.Zero
	e.price = decimal.Zero
	if e.kind == entity.OrderKindMarket {
		e.priceRaw = util.MarketPriceMarker
	} else {
		e.priceRaw = ""
	}

	e.recomputeTotal()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Pair:          e.pair,
		Side:          e.side,
		Kind:          e.kind,
		PriceInput:    e.priceRaw,
		AmountInput:   e.amountRaw,
		TotalDisplay:  e.totalDisplay(),
		PriceEditable: e.kind != entity.OrderKindMarket,
	}
}

// recomputeTotal keeps total = price * amount for non-market orders. Callers
// must hold e.mu.
func (e *Engine) recomputeTotal() {
	if e.kind == entity.OrderKindMarket {
		e.total = decimal.Zero
		return
	}

	e.total = e.price.Mul(e.amount)
}

func (e *Engine) totalDisplay() string {
	if e.kind == entity.OrderKindMarket {
		return util.MarketPriceMarker
	}

	return util.FormatAmount(e.total)
}
