package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothstore/storefront/internal/auth"
	"github.com/clothstore/storefront/internal/inventory"
	"github.com/clothstore/storefront/internal/models"
	"github.com/clothstore/storefront/internal/orders"
)

type fakeOrderService struct {
	checkoutFn     func(ctx context.Context, buyerID int, lines []models.CartLine, shippingAddress string) (*models.Order, error)
	cancelFn       func(ctx context.Context, principal models.Principal, orderID int) (*models.Order, error)
	updateStatusFn func(ctx context.Context, orderID int, status models.OrderStatus) (*models.Order, error)
	getOrderFn     func(ctx context.Context, principal models.Principal, orderID int) (*models.Order, error)
	listByBuyerFn  func(ctx context.Context, buyerID int) ([]models.Order, error)
	listAllFn      func(ctx context.Context) ([]models.Order, error)
	revenueFn      func(ctx context.Context) (*models.RevenueSummary, error)
}

func (f *fakeOrderService) Checkout(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
	return f.checkoutFn(ctx, buyerID, lines, addr)
}
func (f *fakeOrderService) Cancel(ctx context.Context, p models.Principal, id int) (*models.Order, error) {
	return f.cancelFn(ctx, p, id)
}
func (f *fakeOrderService) UpdateStatus(ctx context.Context, id int, s models.OrderStatus) (*models.Order, error) {
	return f.updateStatusFn(ctx, id, s)
}
func (f *fakeOrderService) GetOrder(ctx context.Context, p models.Principal, id int) (*models.Order, error) {
	return f.getOrderFn(ctx, p, id)
}
func (f *fakeOrderService) ListByBuyer(ctx context.Context, buyerID int) ([]models.Order, error) {
	return f.listByBuyerFn(ctx, buyerID)
}
func (f *fakeOrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return f.listAllFn(ctx)
}
func (f *fakeOrderService) Revenue(ctx context.Context) (*models.RevenueSummary, error) {
	return f.revenueFn(ctx)
}

func asPrincipal(p models.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SetPrincipal(c, p)
		c.Next()
	}
}

func orderRouter(service OrderService, principal models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(service)

	r := gin.New()
	r.Use(asPrincipal(principal))
	r.POST("/orders", h.Checkout)
	r.GET("/orders", h.ListMine)
	r.GET("/orders/:id", h.GetOrder)
	r.PUT("/orders/:id/cancel", h.Cancel)
	r.GET("/admin/orders", h.ListAllOrders)
	r.GET("/admin/revenue", h.Revenue)
	r.PUT("/admin/orders/:id/status", h.UpdateStatus)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var buyer = models.Principal{ID: 3, Name: "Ada", Email: "ada@example.com", Role: models.RoleUser}

func TestCheckoutHandlerCreatesOrder(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
			assert.Equal(t, 3, buyerID)
			require.Len(t, lines, 1)
			assert.Equal(t, 5, lines[0].ProductID)
			assert.Equal(t, 2, lines[0].Quantity)
			assert.Equal(t, "221B Baker St", addr)
			return &models.Order{ID: 1, UserID: buyerID, Status: models.OrderStatusPending,
				TotalAmount: decimal.RequireFromString("39.98")}, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPost, "/orders",
		`{"items":[{"product_id":5,"quantity":2}],"shipping_address":"221B Baker St"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestCheckoutHandlerRejectsEmptyCart(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
			t.Fatal("service must not be called for an empty cart")
			return nil, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPost, "/orders", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandlerRejectsNonPositiveQuantity(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
			t.Fatal("service must not be called for an invalid quantity")
			return nil, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPost, "/orders", `{"items":[{"product_id":5,"quantity":0}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandlerMapsInsufficientStock(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
			return nil, &inventory.InsufficientStockError{ProductID: 5}
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPost, "/orders", `{"items":[{"product_id":5,"quantity":99}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient stock")
}

func TestCheckoutHandlerMapsUnknownProduct(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
			return nil, &inventory.ProductNotFoundError{ProductID: 99}
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPost, "/orders", `{"items":[{"product_id":99,"quantity":1}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutHandlerHidesInternalErrors(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(ctx context.Context, buyerID int, lines []models.CartLine, addr string) (*models.Order, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPost, "/orders", `{"items":[{"product_id":5,"quantity":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal error")
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestCancelHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", orders.ErrOrderNotFound, http.StatusNotFound},
		{"not owner", orders.ErrNotOwner, http.StatusForbidden},
		{"not cancellable", orders.ErrOrderNotCancellable, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeOrderService{
				cancelFn: func(ctx context.Context, p models.Principal, id int) (*models.Order, error) {
					return nil, tc.err
				},
			}
			r := orderRouter(svc, buyer)

			w := doJSON(t, r, http.MethodPut, "/orders/10/cancel", "")
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestCancelHandlerSuccess(t *testing.T) {
	svc := &fakeOrderService{
		cancelFn: func(ctx context.Context, p models.Principal, id int) (*models.Order, error) {
			assert.Equal(t, buyer.ID, p.ID)
			assert.Equal(t, 10, id)
			return &models.Order{ID: 10, UserID: p.ID, Status: models.OrderStatusCancelled}, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPut, "/orders/10/cancel", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
}

func TestCancelHandlerRejectsBadID(t *testing.T) {
	r := orderRouter(&fakeOrderService{}, buyer)

	w := doJSON(t, r, http.MethodPut, "/orders/abc/cancel", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderHandlerOwnerScoped(t *testing.T) {
	svc := &fakeOrderService{
		getOrderFn: func(ctx context.Context, p models.Principal, id int) (*models.Order, error) {
			return nil, orders.ErrNotOwner
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodGet, "/orders/10", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListMineHandler(t *testing.T) {
	svc := &fakeOrderService{
		listByBuyerFn: func(ctx context.Context, buyerID int) ([]models.Order, error) {
			assert.Equal(t, 3, buyerID)
			return []models.Order{{ID: 2, UserID: buyerID}, {ID: 1, UserID: buyerID}}, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var got []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestUpdateStatusHandler(t *testing.T) {
	svc := &fakeOrderService{
		updateStatusFn: func(ctx context.Context, id int, s models.OrderStatus) (*models.Order, error) {
			assert.Equal(t, 10, id)
			assert.Equal(t, models.OrderStatusProcessing, s)
			return &models.Order{ID: 10, Status: s}, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPut, "/admin/orders/10/status", `{"status":"processing"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateStatusHandlerInvalidStatus(t *testing.T) {
	svc := &fakeOrderService{
		updateStatusFn: func(ctx context.Context, id int, s models.OrderStatus) (*models.Order, error) {
			return nil, orders.ErrInvalidStatus
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodPut, "/admin/orders/10/status", `{"status":"shipped-to-mars"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevenueHandler(t *testing.T) {
	svc := &fakeOrderService{
		revenueFn: func(ctx context.Context) (*models.RevenueSummary, error) {
			return &models.RevenueSummary{
				TotalRevenue:   decimal.RequireFromString("1099.50"),
				MonthlyRevenue: decimal.RequireFromString("250.00"),
				TotalOrders:    12,
				PendingOrders:  2,
			}, nil
		},
	}
	r := orderRouter(svc, buyer)

	w := doJSON(t, r, http.MethodGet, "/admin/revenue", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalRevenue":"1099.50"`)
	assert.Contains(t, w.Body.String(), `"pendingOrders":2`)
}
