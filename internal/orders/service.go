package orders

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clothstore/storefront/internal/db"
	"github.com/clothstore/storefront/internal/inventory"
	"github.com/clothstore/storefront/internal/models"
)

// EventPublisher announces committed order transitions. Publishing is
// best-effort: a failure is logged, never propagated to the buyer.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent) error
}

// CacheInvalidator drops cached product entries after a stock movement.
type CacheInvalidator interface {
	InvalidateProducts(ctx context.Context, ids []int)
}

// Service is the checkout orchestrator and order lifecycle manager. Every
// mutation runs as one transaction against the store handle: either the
// order, its items and the stock movement all commit, or none do.
type Service struct {
	store     *db.PostgresDB
	orders    *db.OrderRepository
	ledger    *inventory.Ledger
	publisher EventPublisher
	cache     CacheInvalidator
}

func NewService(store *db.PostgresDB, ordersRepo *db.OrderRepository, ledger *inventory.Ledger,
	publisher EventPublisher, cache CacheInvalidator) *Service {
	return &Service{
		store:     store,
		orders:    ordersRepo,
		ledger:    ledger,
		publisher: publisher,
		cache:     cache,
	}
}

// Checkout validates the cart against live prices and stock, reserves stock,
// and commits the order with its items in a single transaction. Unit prices
// are captured per line at this moment and never re-read.
func (s *Service) Checkout(ctx context.Context, buyerID int, lines []models.CartLine, shippingAddress string) (*models.Order, error) {
	order, err := s.materialize(ctx, buyerID, models.OrderStatusPending, shippingAddress, func(ctx context.Context, tx *sql.Tx) (decimal.Decimal, []models.OrderItem, error) {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			if line.Quantity <= 0 {
				return decimal.Zero, nil, fmt.Errorf("quantity for product %d must be positive", line.ProductID)
			}

			product, err := s.orders.SnapshotProduct(ctx, tx, line.ProductID)
			if err != nil {
				return decimal.Zero, nil, err
			}
			if product == nil {
				return decimal.Zero, nil, &inventory.ProductNotFoundError{ProductID: line.ProductID}
			}

			if err := s.ledger.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return decimal.Zero, nil, err
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
			})
		}

		return total, items, nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, models.EventOrderCreated, order)
	return order, nil
}

// MaterializePaid commits an order directly in the paid state from a quote
// already agreed with the buyer before the gateway round-trip: prices and
// total come from the quote, not from the live product rows. Stock is still
// reserved, through the same ledger call as direct checkout.
func (s *Service) MaterializePaid(ctx context.Context, buyerID int, data models.PaymentOrderData) (*models.Order, error) {
	order, err := s.materialize(ctx, buyerID, models.OrderStatusPaid, data.ShippingAddress, func(ctx context.Context, tx *sql.Tx) (decimal.Decimal, []models.OrderItem, error) {
		items := make([]models.OrderItem, 0, len(data.Items))

		for _, line := range data.Items {
			if line.Quantity <= 0 {
				return decimal.Zero, nil, fmt.Errorf("quantity for product %d must be positive", line.ProductID)
			}

			product, err := s.orders.SnapshotProduct(ctx, tx, line.ProductID)
			if err != nil {
				return decimal.Zero, nil, err
			}
			if product == nil {
				return decimal.Zero, nil, &inventory.ProductNotFoundError{ProductID: line.ProductID}
			}

			if err := s.ledger.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return decimal.Zero, nil, err
			}

			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       line.Price,
			})
		}

		return data.TotalAmount, items, nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, models.EventOrderPaid, order)
	return order, nil
}

// buildFunc validates and reserves the cart lines inside tx, returning the
// total and the item snapshots to persist.
type buildFunc func(ctx context.Context, tx *sql.Tx) (decimal.Decimal, []models.OrderItem, error)

func (s *Service) materialize(ctx context.Context, buyerID int, status models.OrderStatus, shippingAddress string, build buildFunc) (*models.Order, error) {
	tx, err := s.store.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	total, items, err := build(ctx, tx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          buyerID,
		TotalAmount:     total,
		Status:          status,
		ShippingAddress: shippingAddress,
	}
	if err := s.orders.InsertOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := s.orders.InsertItem(ctx, tx, &items[i]); err != nil {
			return nil, err
		}
	}
	order.Items = items

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return order, nil
}

// Cancel performs the buyer-facing cancellation transition. The status guard
// runs before any stock mutation: a second cancellation for the same order
// sees cancelled already and fails fast, so stock is restored exactly once.
func (s *Service) Cancel(ctx context.Context, principal models.Principal, orderID int) (*models.Order, error) {
	tx, err := s.store.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orders.LockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !principal.IsAdmin() && order.UserID != principal.ID {
		return nil, ErrNotOwner
	}
	if !order.Status.Cancellable() {
		return nil, ErrOrderNotCancellable
	}

	claimed, err := s.orders.MarkCancelled(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrOrderNotCancellable
	}

	items, err := s.orders.ItemQuantities(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := s.ledger.Restore(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	cancelled, err := s.orders.GetByID(orderID)
	if err != nil || cancelled == nil {
		// The cancellation is committed; fall back to the locked header.
		order.Status = models.OrderStatusCancelled
		cancelled = order
	}

	s.afterCommit(ctx, models.EventOrderCancelled, cancelled)
	return cancelled, nil
}

// UpdateStatus is the administrative override: any status to any status,
// no stock restoration.
func (s *Service) UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.UpdateStatus(orderID, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

// ListByBuyer returns the buyer's orders with items, newest first.
func (s *Service) ListByBuyer(ctx context.Context, buyerID int) ([]models.Order, error) {
	return s.orders.ListByUser(buyerID)
}

// ListAll returns every order with buyer details. Admin-only.
func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll()
}

// Revenue returns the admin revenue summary.
func (s *Service) Revenue(ctx context.Context) (*models.RevenueSummary, error) {
	return s.orders.Revenue()
}

// GetOrder returns one order, restricted to its buyer unless the principal
// is an administrator.
func (s *Service) GetOrder(ctx context.Context, principal models.Principal, orderID int) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !principal.IsAdmin() && order.UserID != principal.ID {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (s *Service) afterCommit(ctx context.Context, eventType string, order *models.Order) {
	ids := make([]int, 0, len(order.Items))
	eventItems := make([]models.OrderItemEvent, 0, len(order.Items))
	for _, it := range order.Items {
		ids = append(ids, it.ProductID)
		eventItems = append(eventItems, models.OrderItemEvent{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	if s.cache != nil {
		s.cache.InvalidateProducts(ctx, ids)
	}

	if s.publisher != nil {
		event := models.OrderEvent{
			EventID:     uuid.NewString(),
			Type:        eventType,
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			Items:       eventItems,
		}
		if err := s.publisher.PublishOrderEvent(event); err != nil {
			log.Printf("⚠️ Failed to publish %s event for order #%d: %v", eventType, order.ID, err)
		}
	}
}
