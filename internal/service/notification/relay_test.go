package notification

import (
	"context"
	"testing"

	"github.com/ghalbir/trading-client/internal/constant"
	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderEventMsg(t *testing.T, event entity.OrderEvent) *nats.Msg {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return &nats.Msg{Data: payload}
}

func TestRelay_FilledEvent(t *testing.T) {
	queue := NewQueue()
	relay := NewRelay(nil, queue, 0)

	err := relay.handleOrderEvent(context.Background(), orderEventMsg(t, entity.OrderEvent{
		Type: constant.TradingStreamSubjectOrderFilled,
		Order: entity.Order{
			ID:     "0d94f766-2f80-4f8e-a7b8-0c4e9f2e2a11",
			Status: entity.OrderStatusFilled,
		},
	}))
	require.NoError(t, err)

	active := queue.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Order 0d94f766 filled", active[0].Message)
	assert.Equal(t, entity.SeveritySuccess, active[0].Severity)
}

func TestRelay_PartialFillEvent(t *testing.T) {
	queue := NewQueue()
	relay := NewRelay(nil, queue, 0)

	err := relay.handleOrderEvent(context.Background(), orderEventMsg(t, entity.OrderEvent{
		Type: constant.TradingStreamSubjectOrderFilled,
		Order: entity.Order{
			ID:     "abc123",
			Status: entity.OrderStatusOpen,
		},
	}))
	require.NoError(t, err)

	active := queue.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Order abc123 partially filled", active[0].Message)
}

func TestRelay_CancelledEvent(t *testing.T) {
	queue := NewQueue()
	relay := NewRelay(nil, queue, 0)

	err := relay.handleOrderEvent(context.Background(), orderEventMsg(t, entity.OrderEvent{
		Type:  constant.TradingStreamSubjectOrderCancelled,
		Order: entity.Order{ID: "abc123"},
	}))
	require.NoError(t, err)

	active := queue.Active()
	require.Len(t, active, 1)
	assert.Equal(t, entity.SeverityInfo, active[0].Severity)
}

func TestRelay_MalformedPayload(t *testing.T) {
	queue := NewQueue()
	relay := NewRelay(nil, queue, 0)

	err := relay.handleOrderEvent(context.Background(), &nats.Msg{Data: []byte("not json")})
	assert.Error(t, err)
	assert.Empty(t, queue.Active())
}

func TestRelay_SubscribeWithoutJetstream(t *testing.T) {
	relay := NewRelay(nil, NewQueue(), 0)
	assert.NoError(t, relay.JetstreamEventSubscribe(context.Background()))
}
