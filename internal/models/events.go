package models

import "github.com/shopspring/decimal"

const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is published after an order transaction commits.
type OrderEvent struct {
	EventID     string           `json:"event_id"`
	Type        string           `json:"type"`
	OrderID     int              `json:"order_id"`
	UserID      int              `json:"user_id"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Items       []OrderItemEvent `json:"items"`
}

type OrderItemEvent struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Notification is the fire-and-forget payload handed to the notification
// collaborator. Token carries whatever the recipient needs to act (an order
// reference, a receipt link).
type Notification struct {
	EventID   string `json:"event_id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Token     string `json:"token"`
}
