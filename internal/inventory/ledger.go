package inventory

import (
	"context"
	"database/sql"
	"fmt"
)

// ProductNotFoundError is returned when a product id does not resolve to an
// existing, non-retired product.
type ProductNotFoundError struct {
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError is returned when a reservation asks for more stock
// than the product has.
type InsufficientStockError struct {
	ProductID int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

// Ledger is the authoritative stock-quantity counter. All operations run on
// the caller's transaction so a stock movement can never outlive the order
// write it accompanies.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve decrements stock by quantity if enough is available. The check and
// the decrement are a single conditional UPDATE, so two concurrent
// reservations against the same product can never both succeed past the
// remaining stock.
func (l *Ledger) Reserve(ctx context.Context, tx *sql.Tx, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $1
		 WHERE id = $2 AND deleted_at IS NULL AND stock_quantity >= $1`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Zero rows updated: tell a missing product apart from a shortfall.
	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND deleted_at IS NULL)`,
		productID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check product %d: %w", productID, err)
	}
	if !exists {
		return &ProductNotFoundError{ProductID: productID}
	}
	return &InsufficientStockError{ProductID: productID}
}

// Restore credits stock back, e.g. when an order is cancelled. Retired
// products are credited too: the row still exists and the order snapshot is
// what drives the quantity. Idempotency is the caller's responsibility.
func (l *Ledger) Restore(ctx context.Context, tx *sql.Tx, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restore quantity must be positive, got %d", quantity)
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = $2`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}
