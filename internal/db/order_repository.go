package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clothstore/storefront/internal/models"
	"github.com/lib/pq"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// SnapshotProduct reads a non-retired product's price and name under a row
// lock, inside the caller's transaction. The snapshot is what gets captured
// on the order item; later price changes do not touch existing orders.
// Returns nil when the product does not exist or is retired.
func (r *OrderRepository) SnapshotProduct(ctx context.Context, tx *sql.Tx, productID int) (*models.Product, error) {
	query := `
		SELECT id, name, price, stock_quantity
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var p models.Product
	err := tx.QueryRowContext(ctx, query, productID).Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to snapshot product %d: %w", productID, err)
	}

	return &p, nil
}

// InsertOrder writes the order header inside the caller's transaction.
func (r *OrderRepository) InsertOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, total_amount, status, shipping_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := tx.QueryRowContext(ctx, query, order.UserID, order.TotalAmount, order.Status, order.ShippingAddress).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// InsertItem writes one order item inside the caller's transaction.
func (r *OrderRepository) InsertItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRowContext(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.Price).
		Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

// LockOrder reads an order header under a row lock inside the caller's
// transaction. Returns nil when the order does not exist.
func (r *OrderRepository) LockOrder(ctx context.Context, tx *sql.Tx, orderID int) (*models.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var o models.Order
	err := tx.QueryRowContext(ctx, query, orderID).
		Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &o, nil
}

// MarkCancelled flips an order to cancelled, guarded on the cancellable
// statuses. Zero rows means another request got there first.
func (r *OrderRepository) MarkCancelled(ctx context.Context, tx *sql.Tx, orderID int) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status IN ($3, $4)
	`

	result, err := tx.ExecContext(ctx, query, models.OrderStatusCancelled, orderID,
		models.OrderStatusPending, models.OrderStatusProcessing)
	if err != nil {
		return false, fmt.Errorf("failed to cancel order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to cancel order: %w", err)
	}
	return rowsAffected > 0, nil
}

// ItemQuantities returns (product, quantity) pairs for an order, inside the
// caller's transaction. Used to drive stock restoration.
func (r *OrderRepository) ItemQuantities(ctx context.Context, tx *sql.Tx, orderID int) ([]models.OrderItemEvent, error) {
	query := `SELECT product_id, quantity FROM order_items WHERE order_id = $1`

	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItemEvent
	for rows.Next() {
		var it models.OrderItemEvent
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// GetByID returns a single order with its items, or nil when not found.
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE id = $1
	`

	var o models.Order
	err := r.db.QueryRow(query, id).
		Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsForOrders([]int{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	return &o, nil
}

// ListByUser returns a buyer's orders with nested items, newest first.
func (r *OrderRepository) ListByUser(userID int) ([]models.Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, shipping_address, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var ids []int
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.attachItems(orders, ids)
}

// ListAll returns every order with nested items and the buyer's name and
// email, newest first. Admin-only view.
func (r *OrderRepository) ListAll() ([]models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.shipping_address, o.created_at,
		       u.name, u.email
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var ids []int
	for rows.Next() {
		var o models.Order
		var name, email sql.NullString
		err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.ShippingAddress, &o.CreatedAt,
			&name, &email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.UserName = name.String
		o.UserEmail = email.String
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.attachItems(orders, ids)
}

// Revenue aggregates the admin revenue summary. Cancelled orders are
// excluded from revenue and order counts; pending counts pending only.
func (r *OrderRepository) Revenue() (*models.RevenueSummary, error) {
	var s models.RevenueSummary

	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status != $1`,
		models.OrderStatusCancelled,
	).Scan(&s.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COALESCE(SUM(total_amount), 0)
		 FROM orders
		 WHERE DATE_TRUNC('month', created_at) = DATE_TRUNC('month', CURRENT_DATE)
		 AND status != $1`,
		models.OrderStatusCancelled,
	).Scan(&s.MonthlyRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM orders WHERE status != $1`,
		models.OrderStatusCancelled,
	).Scan(&s.TotalOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM orders WHERE status = $1`,
		models.OrderStatusPending,
	).Scan(&s.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	return &s, nil
}

// UpdateStatus sets an order's status directly (administrative path, no
// stock restoration). Returns nil when the order does not exist.
func (r *OrderRepository) UpdateStatus(id int, status models.OrderStatus) (*models.Order, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2`

	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(id)
}

func (r *OrderRepository) attachItems(orders []models.Order, ids []int) ([]models.Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.itemsForOrders(ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// itemsForOrders loads items for a set of orders in one query. Products are
// joined without the retirement filter: order history must still resolve
// retired products by id for display.
func (r *OrderRepository) itemsForOrders(ids []int) (map[int][]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id
	`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int][]models.OrderItem)
	for rows.Next() {
		var it models.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}

	return items, rows.Err()
}
