package exchange

import (
	"context"
	"time"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SimGateway is the simulated exchange backend. It acknowledges every
// submission after a configurable latency, standing in for the real
// order-execution endpoint. A rejection hook lets tests and demos force the
// failure path.
type SimGateway struct {
	latency time.Duration
	reject  func(entity.OrderRequest) error
}

type Option func(*SimGateway)

func WithLatency(latency time.Duration) Option {
	return func(g *SimGateway) {
		g.latency = latency
	}
}

func WithRejection(reject func(entity.OrderRequest) error) Option {
	return func(g *SimGateway) {
		g.reject = reject
	}
}

func NewSimGateway(opts ...Option) *SimGateway {
	g := &SimGateway{}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *SimGateway) SubmitOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderAck, error) {
	if g.latency > 0 {
		select {
		case <-time.After(g.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if g.reject != nil {
		if err := g.reject(req); err != nil {
			return nil, err
		}
	}

	ack := &entity.OrderAck{
		OrderID: uuid.NewString(),
		AckedAt: time.Now().UTC(),
	}

	logrus.WithFields(logrus.Fields{
		"order_id": ack.OrderID,
		"pair":     req.Pair,
		"side":     req.Side,
		"kind":     req.Kind,
	}).Debug("order acknowledged")

	return ack, nil
}
