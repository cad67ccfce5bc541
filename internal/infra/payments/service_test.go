package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPaymentURL(t *testing.T) {
	s := NewService("https://linen.example.com/")
	require.Equal(t, "https://linen.example.com/payments/pay?invoice=42", s.PaymentURL(42))
	require.Equal(t,
		"https://linen.example.com/payments/pay?amount=103.50&invoice=42",
		s.PaymentURLWithAmount(42, decimal.RequireFromString("103.5")))
}
