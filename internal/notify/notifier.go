package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/clothstore/storefront/internal/messaging"
	"github.com/clothstore/storefront/internal/models"
)

// NotificationsQueue feeds the notification worker.
const NotificationsQueue = "notifications.send"

// Sender is the outbound notification capability. Implementations are
// best-effort: callers log failures and carry on.
type Sender interface {
	Send(ctx context.Context, recipient, subject, token string) error
}

// QueueSender hands notifications to the delivery worker over RabbitMQ.
// When the queue is unavailable the recoverable token is logged so an
// administrator can surface it out of band instead of the request failing.
type QueueSender struct {
	mq *messaging.RabbitMQ
}

func NewQueueSender(mq *messaging.RabbitMQ) (*QueueSender, error) {
	if err := mq.DeclareQueue(NotificationsQueue); err != nil {
		return nil, err
	}

	return &QueueSender{mq: mq}, nil
}

func (s *QueueSender) Send(ctx context.Context, recipient, subject, token string) error {
	n := models.Notification{
		EventID:   uuid.NewString(),
		Recipient: recipient,
		Subject:   subject,
		Token:     token,
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := s.mq.Publish(ctx, NotificationsQueue, data); err != nil {
		log.Printf("=== NOTIFICATION FALLBACK (queue unavailable) ===")
		log.Printf("Recipient: %s", recipient)
		log.Printf("Token: %s", token)
		log.Printf("=================================================")
		return err
	}

	return nil
}
