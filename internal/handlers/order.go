package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clothstore/storefront/internal/auth"
	"github.com/clothstore/storefront/internal/inventory"
	"github.com/clothstore/storefront/internal/models"
	"github.com/clothstore/storefront/internal/orders"
)

// OrderService is the slice of the order core the HTTP layer drives.
type OrderService interface {
	Checkout(ctx context.Context, buyerID int, lines []models.CartLine, shippingAddress string) (*models.Order, error)
	Cancel(ctx context.Context, principal models.Principal, orderID int) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error)
	GetOrder(ctx context.Context, principal models.Principal, orderID int) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID int) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Revenue(ctx context.Context) (*models.RevenueSummary, error)
}

type OrderHandler struct {
	service OrderService
}

func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// HealthCheck returns server status
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "storefront"})
}

// Checkout validates the cart and creates a pending order.
func (h *OrderHandler) Checkout(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.Checkout(c.Request.Context(), principal.ID, req.Items, req.ShippingAddress)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListMine returns the requesting buyer's orders, newest first.
func (h *OrderHandler) ListMine(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	list, err := h.service.ListByBuyer(c.Request.Context(), principal.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetOrder returns a single order, buyer-scoped unless admin.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), principal, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListAllOrders returns every order with buyer details. Admin only.
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// Revenue returns the revenue summary. Admin only.
func (h *OrderHandler) Revenue(c *gin.Context) {
	summary, err := h.service.Revenue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate revenue"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateStatus sets an order's status. Admin only, no stock restoration.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Cancel performs the buyer cancellation transition with stock restoration.
func (h *OrderHandler) Cancel(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), principal, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// respondOrderError maps the core error taxonomy onto HTTP responses without
// leaking storage detail.
func respondOrderError(c *gin.Context, err error) {
	var notFound *inventory.ProductNotFoundError
	var shortfall *inventory.InsufficientStockError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": notFound.Error()})
	case errors.As(err, &shortfall):
		c.JSON(http.StatusBadRequest, gin.H{"error": shortfall.Error()})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, orders.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "order belongs to another buyer"})
	case errors.Is(err, orders.ErrOrderNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"error": "order cannot be cancelled"})
	case errors.Is(err, orders.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
