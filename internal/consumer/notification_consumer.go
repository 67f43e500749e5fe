package consumer

import (
	"encoding/json"
	"log"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/clothstore/storefront/internal/models"
)

// Deliverer is the actual delivery channel (SMTP relay, SMS bridge). The
// worker treats it as an external collaborator.
type Deliverer interface {
	Deliver(n models.Notification) error
}

// LogDeliverer writes deliveries to the service log. Stands in when no real
// delivery channel is configured, keeping the token recoverable.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(n models.Notification) error {
	log.Printf("📧 Delivered %q to %s (token %s)", n.Subject, n.Recipient, n.Token)
	return nil
}

type NotificationConsumer struct {
	deliverer Deliverer
}

func NewNotificationConsumer(deliverer Deliverer) *NotificationConsumer {
	return &NotificationConsumer{deliverer: deliverer}
}

// ProcessNotifications drains the notifications queue. Poison messages are
// dropped; delivery failures are requeued for retry.
func (c *NotificationConsumer) ProcessNotifications(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var n models.Notification
		if err := json.Unmarshal(msg.Body, &n); err != nil {
			log.Printf("❌ Failed to parse notification: %v", err)
			msg.Nack(false, false)
			continue
		}

		if err := c.deliverer.Deliver(n); err != nil {
			log.Printf("⚠️ Delivery to %s failed, requeued: %v", n.Recipient, err)
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)
	}
}

// ProcessOrderEvents turns committed order transitions into buyer
// notifications. The order transaction is long since committed here, so a
// failure only affects the notification, never the order.
func (c *NotificationConsumer) ProcessOrderEvents(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Printf("❌ Failed to parse order event: %v", err)
			msg.Nack(false, false)
			continue
		}

		n := models.Notification{
			EventID:   event.EventID,
			Recipient: subjectRecipient(event),
			Subject:   subjectFor(event.Type),
			Token:     orderToken(event),
		}

		if err := c.deliverer.Deliver(n); err != nil {
			log.Printf("⚠️ Notification for order #%d failed, requeued: %v", event.OrderID, err)
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)
		log.Printf("✅ Order #%d %s notification handled", event.OrderID, event.Type)
	}
}

func subjectFor(eventType string) string {
	switch eventType {
	case models.EventOrderCreated:
		return "Order placed"
	case models.EventOrderPaid:
		return "Payment received"
	case models.EventOrderCancelled:
		return "Order cancelled"
	}
	return "Order update"
}

func subjectRecipient(event models.OrderEvent) string {
	// The event carries the buyer id; the identity service owns addresses.
	return "user:" + strconv.Itoa(event.UserID)
}

func orderToken(event models.OrderEvent) string {
	return "order-" + strconv.Itoa(event.OrderID)
}
