package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/clothstore/storefront/internal/models"
)

// orderMaterializer is the slice of the order service the gateway drives.
type orderMaterializer interface {
	MaterializePaid(ctx context.Context, buyerID int, data models.PaymentOrderData) (*models.Order, error)
}

// notificationSender is the outbound notification collaborator. Delivery is
// fire-and-forget; a failure must never roll back a verified payment.
type notificationSender interface {
	Send(ctx context.Context, recipient, subject, token string) error
}

// Gateway reconciles external payment receipts: it verifies the signature
// and, on success, materializes the order directly in the paid state.
// Verification completes before the writing transaction begins.
type Gateway struct {
	verifier *Verifier
	orders   orderMaterializer
	notifier notificationSender
}

func NewGateway(verifier *Verifier, orders orderMaterializer, notifier notificationSender) *Gateway {
	return &Gateway{
		verifier: verifier,
		orders:   orders,
		notifier: notifier,
	}
}

// VerifyAndMaterialize checks the receipt and commits the pre-agreed order
// in the paid state. On signature mismatch nothing is persisted.
func (g *Gateway) VerifyAndMaterialize(ctx context.Context, buyer models.Principal, req models.VerifyPaymentRequest) (*models.Order, error) {
	if err := g.verifier.Verify(req.Receipt); err != nil {
		return nil, err
	}

	order, err := g.orders.MaterializePaid(ctx, buyer.ID, req.OrderData)
	if err != nil {
		return nil, err
	}

	if g.notifier != nil {
		token := fmt.Sprintf("order-%d/%s", order.ID, req.Receipt.TransactionID)
		if err := g.notifier.Send(ctx, buyer.Email, "Payment received", token); err != nil {
			log.Printf("⚠️ Failed to notify %s about order #%d: %v", buyer.Email, order.ID, err)
		}
	}

	return order, nil
}
