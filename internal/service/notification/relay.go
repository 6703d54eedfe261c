package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/ghalbir/trading-client/internal/constant"
	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/util"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const defaultRelayTimeout = 5 * time.Second

// Relay consumes order lifecycle events and turns fills and cancellations
// into user-facing notifications. Placements are announced synchronously by
// the app, so the relay skips them.
type Relay struct {
	js      nats.JetStreamContext
	queue   *Queue
	timeout time.Duration
}

func NewRelay(js nats.JetStreamContext, queue *Queue, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}

	return &Relay{
		js:      js,
		queue:   queue,
		timeout: timeout,
	}
}

func (r *Relay) JetstreamEventSubscribe(_ context.Context) error {
	if r.js == nil {
		return nil
	}

	// Each subject gets its own durable consumer.
	subjects := map[string]string{
		constant.TradingStreamSubjectOrderFilled:    constant.TradingQueueGroup + "_filled",
		constant.TradingStreamSubjectOrderCancelled: constant.TradingQueueGroup + "_cancelled",
	}

	for subject, durable := range subjects {
		_, err := r.js.QueueSubscribe(
			subject,
			constant.TradingQueueName,
			func(msg *nats.Msg) {
				err := util.ProcessWithTimeout(r.timeout, msg, r.handleOrderEvent)
				if err != nil {
					logrus.Errorf("error processing message: %v", err)
					return
				}

				err = msg.Ack()
				if err != nil {
					logrus.Errorf("failed to acknowledge message: %v", err)
					return
				}
			},
			nats.ManualAck(),
			nats.Durable(durable),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *Relay) handleOrderEvent(_ context.Context, msg *nats.Msg) error {
	var event entity.OrderEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return err
	}

	switch event.Type {
	case constant.TradingStreamSubjectOrderFilled:
		r.queue.Push(fillMessage(event.Order), entity.SeveritySuccess)
	case constant.TradingStreamSubjectOrderCancelled:
		r.queue.Push(fmt.Sprintf("Order %s cancelled", shortID(event.Order.ID)), entity.SeverityInfo)
	}

	return nil
}

func fillMessage(order entity.Order) string {
	if order.Status == entity.OrderStatusFilled {
		return fmt.Sprintf("Order %s filled", shortID(order.ID))
	}

	return fmt.Sprintf("Order %s partially filled", shortID(order.ID))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}

	return id[:8]
}
