package payments

import "testing"

func TestVerifyPaymentSignature(t *testing.T) {
	secret := []byte("test-secret")
	valid := SignPayment("order_123", "pay_456", secret)

	tests := []struct {
		name      string
		orderRef  string
		payRef    string
		signature string
		want      bool
	}{
		{name: "valid signature", orderRef: "order_123", payRef: "pay_456", signature: valid, want: true},
		{name: "empty signature", orderRef: "order_123", payRef: "pay_456", signature: "", want: false},
		{name: "tampered signature", orderRef: "order_123", payRef: "pay_456", signature: valid[:len(valid)-1] + "0", want: false},
		{name: "wrong order ref", orderRef: "order_999", payRef: "pay_456", signature: valid, want: false},
		{name: "wrong payment ref", orderRef: "order_123", payRef: "pay_999", signature: valid, want: false},
		{name: "swapped refs", orderRef: "pay_456", payRef: "order_123", signature: valid, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPaymentSignature(tt.orderRef, tt.payRef, tt.signature, secret); got != tt.want {
				t.Errorf("VerifyPaymentSignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignPaymentDiffersPerSecret(t *testing.T) {
	sig1 := SignPayment("order_123", "pay_456", []byte("secret-a"))
	sig2 := SignPayment("order_123", "pay_456", []byte("secret-b"))
	if sig1 == sig2 {
		t.Error("signatures with different secrets should not match")
	}
}
