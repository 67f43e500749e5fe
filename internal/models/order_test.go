package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusPaid, OrderStatusCancelled} {
		assert.True(t, ValidOrderStatus(s), "%s should be valid", s)
	}

	assert.False(t, ValidOrderStatus("shipped-to-mars"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("Pending"), "status values are case-sensitive")
}

func TestCancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusProcessing.Cancellable())
	assert.False(t, OrderStatusPaid.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
}

func TestPrincipalIsAdmin(t *testing.T) {
	assert.True(t, Principal{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Principal{Role: RoleUser}.IsAdmin())
	assert.False(t, Principal{}.IsAdmin())
}
