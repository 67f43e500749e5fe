package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether the buyer-facing cancellation transition is
// legal from s. Stock is restored only through this transition.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`

	// Populated only on the admin listing.
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type CartLine struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}

type CheckoutRequest struct {
	Items           []CartLine `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string     `json:"shipping_address"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type RevenueSummary struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	TotalOrders    int             `json:"totalOrders"`
	PendingOrders  int             `json:"pendingOrders"`
}
