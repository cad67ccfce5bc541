package payments

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Service строит ссылки на оплату месячных счетов.
// Пока оплата эмулируется нашим же HTTP-сервером (/payments/pay).
type Service struct {
	baseURL string
}

func NewService(baseURL string) *Service {
	return &Service{baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Service) PaymentURL(invoiceID int64) string {
	return fmt.Sprintf("%s/payments/pay?invoice=%d", s.baseURL, invoiceID)
}

// PaymentURLWithAmount добавляет сумму для отображения на странице оплаты.
func (s *Service) PaymentURLWithAmount(invoiceID int64, amount decimal.Decimal) string {
	q := url.Values{}
	q.Set("invoice", fmt.Sprint(invoiceID))
	q.Set("amount", amount.StringFixed(2))
	return s.baseURL + "/payments/pay?" + q.Encode()
}
