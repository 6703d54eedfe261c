package exchange

import (
	"time"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FillRecorder is the lifecycle hook fill simulation drives.
type FillRecorder interface {
	RecordFill(orderID string, filledAmount, fillPrice decimal.Decimal) error
}

// Filler simulates the market executing orders: market orders fill in full
// at the current best price after a short delay. Limit orders are left open;
// there is no matching here.
type Filler struct {
	recorder FillRecorder
	prices   entity.PriceSource
	delay    time.Duration
}

func NewFiller(recorder FillRecorder, prices entity.PriceSource, delay time.Duration) *Filler {
	return &Filler{
		recorder: recorder,
		prices:   prices,
		delay:    delay,
	}
}

// Schedule queues a simulated execution for the order where one applies.
func (f *Filler) Schedule(order entity.Order) {
	if order.Kind != entity.OrderKindMarket {
		return
	}

	fill := func() {
		price, ok := f.prices.BestPrice(order.Pair)
		if !ok {
			price = order.LimitPrice
		}

		if err := f.recorder.RecordFill(order.ID, order.Amount, price); err != nil {
			logrus.Errorf("simulated fill for order %s failed: %v", order.ID, err)
		}
	}

	if f.delay <= 0 {
		fill()
		return
	}

	time.AfterFunc(f.delay, fill)
}
