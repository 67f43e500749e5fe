package orders

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
	ErrNotOwner            = errors.New("order belongs to another buyer")
	ErrInvalidStatus       = errors.New("invalid order status")
)
