package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimGateway_Ack(t *testing.T) {
	g := NewSimGateway()

	ack, err := g.SubmitOrder(context.Background(), entity.OrderRequest{
		Pair:   "GBR/USDT",
		Kind:   entity.OrderKindLimit,
		Side:   entity.OrderSideBuy,
		Price:  decimal.RequireFromString("99.50"),
		Amount: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ack.OrderID)
	assert.False(t, ack.AckedAt.IsZero())
}

func TestSimGateway_Rejection(t *testing.T) {
	rejected := errors.New("insufficient balance")
	g := NewSimGateway(WithRejection(func(entity.OrderRequest) error {
		return rejected
	}))

	_, err := g.SubmitOrder(context.Background(), entity.OrderRequest{Pair: "GBR/USDT"})
	assert.ErrorIs(t, err, rejected)
}

type recordedFill struct {
	orderID string
	amount  decimal.Decimal
	price   decimal.Decimal
}

type fakeRecorder struct {
	fills []recordedFill
}

func (r *fakeRecorder) RecordFill(orderID string, filledAmount, fillPrice decimal.Decimal) error {
	r.fills = append(r.fills, recordedFill{orderID: orderID, amount: filledAmount, price: fillPrice})
	return nil
}

type staticPrices struct {
	price decimal.Decimal
}

func (p staticPrices) BestPrice(string) (decimal.Decimal, bool) {
	return p.price, p.price.IsPositive()
}

func TestFiller_MarketOrderFillsAtBestPrice(t *testing.T) {
	recorder := &fakeRecorder{}
	f := NewFiller(recorder, staticPrices{price: decimal.RequireFromString("100.25")}, 0)

	f.Schedule(entity.Order{
		ID:     "order-1",
		Pair:   "GBR/USDT",
		Kind:   entity.OrderKindMarket,
		Amount: decimal.RequireFromString("0.5"),
	})

	require.Len(t, recorder.fills, 1)
	assert.Equal(t, "order-1", recorder.fills[0].orderID)
	assert.Equal(t, "0.5", recorder.fills[0].amount.String())
	assert.Equal(t, "100.25", recorder.fills[0].price.String())
}

func TestFiller_IgnoresLimitOrders(t *testing.T) {
	recorder := &fakeRecorder{}
	f := NewFiller(recorder, staticPrices{price: decimal.RequireFromString("100.25")}, 0)

	f.Schedule(entity.Order{
		ID:   "order-2",
		Pair: "GBR/USDT",
		Kind: entity.OrderKindLimit,
	})

	assert.Empty(t, recorder.fills)
}
