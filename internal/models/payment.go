package models

import "github.com/shopspring/decimal"

// PaymentReceipt is the gateway-issued proof of payment. The signature covers
// the concatenation of the gateway order id and the transaction id.
type PaymentReceipt struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	TransactionID  string `json:"transaction_id" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
}

// PaymentOrderData is the quote agreed with the buyer before the gateway
// round-trip. Prices and total are trusted as-is; stock is still reserved.
type PaymentOrderData struct {
	TotalAmount     decimal.Decimal   `json:"total_amount" binding:"required"`
	ShippingAddress string            `json:"shipping_address"`
	Items           []PaymentItemData `json:"items" binding:"required,min=1,dive"`
}

type PaymentItemData struct {
	ProductID int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price" binding:"required"`
}

type VerifyPaymentRequest struct {
	Receipt   PaymentReceipt   `json:"receipt" binding:"required"`
	OrderData PaymentOrderData `json:"order_data" binding:"required"`
}
