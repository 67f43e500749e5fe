package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/clothstore/storefront/internal/models"
)

var ErrVerificationFailed = errors.New("payment verification failed")

// Verifier checks gateway receipts against the shared secret. A valid
// receipt is treated as proof of payment.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign computes the expected signature for a pair of correlation ids:
// hex(HMAC-SHA256(secret, gatewayOrderID + "|" + transactionID)).
func (v *Verifier) Sign(gatewayOrderID, transactionID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + transactionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature from the receipt's correlation ids and
// compares it byte-for-byte against the supplied one. The comparison is
// constant-time.
func (v *Verifier) Verify(receipt models.PaymentReceipt) error {
	expected := v.Sign(receipt.GatewayOrderID, receipt.TransactionID)
	if !hmac.Equal([]byte(expected), []byte(receipt.Signature)) {
		return ErrVerificationFailed
	}
	return nil
}
