package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment computes the hex HMAC-SHA256 of "orderRef|paymentRef"
// with the gateway shared secret. The gateway sends the same digest
// with its completion callback.
func SignPayment(orderRef, paymentRef string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature re-derives the expected digest and compares in
// constant time.
func VerifyPaymentSignature(orderRef, paymentRef, signature string, secret []byte) bool {
	expected := SignPayment(orderRef, paymentRef, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
