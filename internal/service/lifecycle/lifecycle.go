package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ghalbir/trading-client/internal/constant"
	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/service/session"
	"github.com/ghalbir/trading-client/internal/util"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrSubmissionFailed  = errors.New("order submission failed")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInvalidFill       = errors.New("invalid fill")
)

// Manager owns the in-memory order set and its status machine:
// Open -> Filled and Open -> Cancelled, both terminal. Orders are never
// deleted, only retained in history.
type Manager struct {
	gateway entity.OrderGateway
	js      nats.JetStreamContext
	now     func() time.Time

	mu       sync.RWMutex
	orders   map[string]*entity.Order
	sequence []string // insertion order; ties in CreatedAt keep it
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(gateway entity.OrderGateway, js nats.JetStreamContext, opts ...Option) *Manager {
	m := &Manager{
		gateway: gateway,
		js:      js,
		now:     time.Now,
		orders:  make(map[string]*entity.Order),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Submit validates the session and performs the single submission call to
// the exchange backend. The authentication gate runs before any other work;
// a rejected submission creates no order. The call is shielded from caller
// cancellation: a user navigating away mid-submission does not abort it, the
// result is still applied to lifecycle state.
func (m *Manager) Submit(ctx context.Context, req entity.OrderRequest, sess *session.Store) (*entity.Order, error) {
	if !sess.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	ack, err := m.gateway.SubmitOrder(context.WithoutCancel(ctx), req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"pair": req.Pair,
			"side": req.Side,
			"kind": req.Kind,
		}).Errorf("order submission rejected: %v", err)
		return nil, ErrSubmissionFailed
	}

	now := m.now().UTC()
	order := &entity.Order{
		ID:           ack.OrderID,
		Pair:         req.Pair,
		Kind:         req.Kind,
		Side:         req.Side,
		LimitPrice:   req.Price,
		Amount:       req.Amount,
		FilledAmount: decimal.Zero,
		Status:       entity.OrderStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if !req.IsMarket() {
		order.Total = req.Price.Mul(req.Amount)
	}

	m.mu.Lock()
	m.orders[order.ID] = order
	m.sequence = append(m.sequence, order.ID)
	m.mu.Unlock()

	m.publishEvent(constant.TradingStreamSubjectOrderPlaced, *order)

	return orderCopy(order), nil
}

// Cancel transitions an open order to Cancelled. Terminal orders reject the
// transition.
func (m *Manager) Cancel(orderID string) error {
	m.mu.Lock()

	order, ok := m.orders[orderID]
	if !ok {
		m.mu.Unlock()
		return ErrOrderNotFound
	}

	if order.Status.IsTerminal() {
		m.mu.Unlock()
		return ErrInvalidTransition
	}

	order.Status = entity.OrderStatusCancelled
	order.UpdatedAt = m.now().UTC()
	snapshot := *order
	m.mu.Unlock()

	m.publishEvent(constant.TradingStreamSubjectOrderCancelled, snapshot)

	return nil
}

// RecordFill applies a cumulative fill reported by the exchange. A full fill
// transitions the order to Filled; a partial fill keeps it Open. The filled
// amount never decreases and never exceeds the order amount.
func (m *Manager) RecordFill(orderID string, filledAmount, fillPrice decimal.Decimal) error {
	m.mu.Lock()

	order, ok := m.orders[orderID]
	if !ok {
		m.mu.Unlock()
		return ErrOrderNotFound
	}

	if order.Status.IsTerminal() {
		m.mu.Unlock()
		return ErrInvalidTransition
	}

	if filledAmount.LessThan(order.FilledAmount) || filledAmount.GreaterThan(order.Amount) {
		m.mu.Unlock()
		return ErrInvalidFill
	}

	order.FilledAmount = filledAmount
	order.UpdatedAt = m.now().UTC()

	// Market orders only learn their execution price from the fill.
	if order.Kind == entity.OrderKindMarket && fillPrice.IsPositive() {
		order.LimitPrice = fillPrice
		order.Total = fillPrice.Mul(order.Amount)
	}

	if filledAmount.Equal(order.Amount) {
		order.Status = entity.OrderStatusFilled
	}
	snapshot := *order
	m.mu.Unlock()

	// Partial fills publish too; subscribers tell them apart by status.
	m.publishEvent(constant.TradingStreamSubjectOrderFilled, snapshot)

	return nil
}

// ListOpenOrders returns open orders, newest first. An unauthenticated
// session yields the login-required sentinel so the view can render a login
// prompt instead of an empty table.
func (m *Manager) ListOpenOrders(pair string, sess *session.Store) entity.OrderListing {
	if !sess.IsAuthenticated() {
		return entity.OrderListing{LoginRequired: true}
	}

	return entity.OrderListing{Orders: m.list(pair, true)}
}

// ListHistory returns every tracked order, newest first.
func (m *Manager) ListHistory(pair string, sess *session.Store) entity.OrderListing {
	if !sess.IsAuthenticated() {
		return entity.OrderListing{LoginRequired: true}
	}

	return entity.OrderListing{Orders: m.list(pair, false)}
}

func (m *Manager) list(pair string, openOnly bool) []entity.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]entity.Order, 0, len(m.sequence))
	for idx := len(m.sequence) - 1; idx >= 0; idx-- {
		order := m.orders[m.sequence[idx]]
		if pair != "" && order.Pair != pair {
			continue
		}
		if openOnly && !order.IsOpen() {
			continue
		}

		orders = append(orders, *order)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders
}

// Reset drops all tracked orders. Used when the owning app state is torn
// down on logout.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders = make(map[string]*entity.Order)
	m.sequence = nil
}

func (m *Manager) publishEvent(subject string, order entity.Order) {
	if m.js == nil {
		return
	}

	event := entity.OrderEvent{
		Type:  subject,
		Order: order,
	}
	if err := util.PublishEvent(m.js, subject, event); err != nil {
		logrus.Errorf("failed to publish order event: %v", err)
	}
}

// JetstreamEventInit creates or updates the trading event stream.
func (m *Manager) JetstreamEventInit(ctx context.Context) error {
	if m.js == nil {
		return nil
	}

	streamConfig := &nats.StreamConfig{
		Name:      constant.TradingStreamName,
		Subjects:  []string{constant.TradingStreamSubjectAll},
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxAge:    24 * time.Hour,
	}

	stream, err := m.js.StreamInfo(constant.TradingStreamName, nats.Context(ctx))
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		logrus.Error(err)
		return err
	}

	if stream == nil {
		logrus.Infof("creating stream: %s", constant.TradingStreamName)
		_, err = m.js.AddStream(streamConfig, nats.Context(ctx))
		return err
	}

	logrus.Infof("updating stream: %s", constant.TradingStreamName)
	_, err = m.js.UpdateStream(streamConfig, nats.Context(ctx))
	if err != nil {
		logrus.Error(err)
		return err
	}

	return nil
}

func orderCopy(order *entity.Order) *entity.Order {
	copied := *order
	return &copied
}
