package main

import (
	"log"

	"github.com/clothstore/storefront/internal/config"
	"github.com/clothstore/storefront/internal/consumer"
	"github.com/clothstore/storefront/internal/messaging"
	"github.com/clothstore/storefront/internal/notify"
	"github.com/clothstore/storefront/internal/publisher"
)

func main() {
	cfg := config.LoadWorker()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	for _, queue := range []string{publisher.OrderEventsQueue, notify.NotificationsQueue} {
		if err := rabbitMQ.DeclareQueue(queue); err != nil {
			log.Fatalf("Failed to declare queue %s: %v", queue, err)
		}
	}

	events, err := rabbitMQ.Consume(publisher.OrderEventsQueue)
	if err != nil {
		log.Fatalf("Failed to consume order events: %v", err)
	}
	notifications, err := rabbitMQ.Consume(notify.NotificationsQueue)
	if err != nil {
		log.Fatalf("Failed to consume notifications: %v", err)
	}

	worker := consumer.NewNotificationConsumer(consumer.LogDeliverer{})

	log.Println("🚀 notification-worker started")
	go worker.ProcessOrderEvents(events)
	worker.ProcessNotifications(notifications)
}
