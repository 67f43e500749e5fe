package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clothstore/storefront/internal/messaging"
	"github.com/clothstore/storefront/internal/models"
)

// OrderEventsQueue carries every committed order transition; consumers
// dispatch on the event type.
const OrderEventsQueue = "order.events"

type OrderPublisher struct {
	mq *messaging.RabbitMQ
}

func NewOrderPublisher(mq *messaging.RabbitMQ) (*OrderPublisher, error) {
	if err := mq.DeclareQueue(OrderEventsQueue); err != nil {
		return nil, err
	}

	return &OrderPublisher{mq: mq}, nil
}

// PublishOrderEvent announces an order.created, order.paid or
// order.cancelled transition.
func (p *OrderPublisher) PublishOrderEvent(event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.mq.Publish(context.Background(), OrderEventsQueue, data)
}
