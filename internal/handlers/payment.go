package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clothstore/storefront/internal/auth"
	"github.com/clothstore/storefront/internal/models"
	"github.com/clothstore/storefront/internal/payment"
)

type PaymentGateway interface {
	VerifyAndMaterialize(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error)
}

type PaymentHandler struct {
	gateway PaymentGateway
}

func NewPaymentHandler(gateway PaymentGateway) *PaymentHandler {
	return &PaymentHandler{gateway: gateway}
}

// Verify checks the gateway receipt and materializes the paid order.
func (h *PaymentHandler) Verify(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.gateway.VerifyAndMaterialize(c.Request.Context(), principal, req)
	if err != nil {
		if errors.Is(err, payment.ErrVerificationFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment verification failed"})
			return
		}
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}
