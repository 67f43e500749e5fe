package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothstore/storefront/internal/models"
)

func TestVerifyAcceptsOwnSignature(t *testing.T) {
	v := NewVerifier("test-secret")

	receipt := models.PaymentReceipt{
		GatewayOrderID: "gw_order_123",
		TransactionID:  "txn_456",
	}
	receipt.Signature = v.Sign(receipt.GatewayOrderID, receipt.TransactionID)

	assert.NoError(t, v.Verify(receipt))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	v := NewVerifier("test-secret")

	receipt := models.PaymentReceipt{
		GatewayOrderID: "gw_order_123",
		TransactionID:  "txn_456",
	}
	receipt.Signature = v.Sign(receipt.GatewayOrderID, receipt.TransactionID) + "00"

	require.ErrorIs(t, v.Verify(receipt), ErrVerificationFailed)
}

func TestVerifyRejectsSwappedIDs(t *testing.T) {
	v := NewVerifier("test-secret")

	// Signature for (a, b) must not validate (b, a): the separator pins the
	// field positions.
	sig := v.Sign("alpha", "beta")
	receipt := models.PaymentReceipt{
		GatewayOrderID: "beta",
		TransactionID:  "alpha",
		Signature:      sig,
	}

	require.ErrorIs(t, v.Verify(receipt), ErrVerificationFailed)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	ours := NewVerifier("test-secret")
	theirs := NewVerifier("other-secret")

	receipt := models.PaymentReceipt{
		GatewayOrderID: "gw_order_123",
		TransactionID:  "txn_456",
		Signature:      theirs.Sign("gw_order_123", "txn_456"),
	}

	require.ErrorIs(t, ours.Verify(receipt), ErrVerificationFailed)
}

func TestSignIsDeterministicHex(t *testing.T) {
	v := NewVerifier("test-secret")

	first := v.Sign("gw_order_123", "txn_456")
	second := v.Sign("gw_order_123", "txn_456")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Regexp(t, "^[0-9a-f]+$", first)
}
