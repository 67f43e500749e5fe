package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/clothstore/storefront/internal/inventory"
	"github.com/clothstore/storefront/internal/models"
	"github.com/clothstore/storefront/internal/payment"
)

type fakeGateway struct {
	fn func(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error)
}

func (f *fakeGateway) VerifyAndMaterialize(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error) {
	return f.fn(ctx, buyer, req)
}

func paymentRouter(gateway PaymentGateway, principal models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asPrincipal(principal))
	r.POST("/payments/verify", NewPaymentHandler(gateway).Verify)
	return r
}

const verifyBody = `{
	"receipt": {"gateway_order_id": "gw_1", "transaction_id": "txn_1", "signature": "abc"},
	"order_data": {
		"total_amount": "19.99",
		"shipping_address": "221B Baker St",
		"items": [{"product_id": 5, "quantity": 1, "price": "19.99"}]
	}
}`

func TestVerifyHandlerSuccess(t *testing.T) {
	gw := &fakeGateway{
		fn: func(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error) {
			assert.Equal(t, 3, buyer.ID)
			assert.Equal(t, "gw_1", req.Receipt.GatewayOrderID)
			assert.Equal(t, "txn_1", req.Receipt.TransactionID)
			return &models.Order{ID: 42, UserID: buyer.ID, Status: models.OrderStatusPaid}, nil
		},
	}
	r := paymentRouter(gw, buyer)

	w := doJSON(t, r, http.MethodPost, "/payments/verify", verifyBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"status":"paid"`)
}

func TestVerifyHandlerBadSignature(t *testing.T) {
	gw := &fakeGateway{
		fn: func(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error) {
			return nil, payment.ErrVerificationFailed
		},
	}
	r := paymentRouter(gw, buyer)

	w := doJSON(t, r, http.MethodPost, "/payments/verify", verifyBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "payment verification failed")
}

func TestVerifyHandlerStockShortfall(t *testing.T) {
	gw := &fakeGateway{
		fn: func(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error) {
			return nil, &inventory.InsufficientStockError{ProductID: 5}
		},
	}
	r := paymentRouter(gw, buyer)

	w := doJSON(t, r, http.MethodPost, "/payments/verify", verifyBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient stock")
}

func TestVerifyHandlerRejectsMalformedBody(t *testing.T) {
	gw := &fakeGateway{
		fn: func(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error) {
			t.Fatal("gateway must not be called for a malformed body")
			return nil, nil
		},
	}
	r := paymentRouter(gw, buyer)

	w := doJSON(t, r, http.MethodPost, "/payments/verify", `{"receipt": 7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
